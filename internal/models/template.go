package models

import (
	"time"

	"github.com/lib/pq"
)

// Template is a role an interview can be started from. An empty OwnerID marks
// a global (admin-managed) template.
type Template struct {
	ID          string         `gorm:"column:id;type:uuid;primaryKey" json:"id" yaml:"id"`
	OwnerID     string         `gorm:"column:owner_id;type:text;index" json:"owner_id,omitempty" yaml:"-"`
	Title       string         `gorm:"column:title;type:text" json:"title" yaml:"title"`
	Role        string         `gorm:"column:role;type:text;index" json:"role" yaml:"role"`
	Description string         `gorm:"column:description;type:text" json:"description" yaml:"description"`
	TechStacks  pq.StringArray `gorm:"column:tech_stacks;type:text[]" json:"tech_stacks" yaml:"tech_stacks"`
	Duration    string         `gorm:"column:duration;type:text" json:"duration" yaml:"duration"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:timestamptz" json:"created_at" yaml:"-"`
}

func (Template) TableName() string { return "templates" }

func (t Template) IsGlobal() bool { return t.OwnerID == "" }
