package storage

import (
	"net/url"
	"strings"
)

const gcsHost = "storage.googleapis.com"

// IsBucketURL reports whether raw is an https object URL inside bucket, in
// either the path style (storage.googleapis.com/<bucket>/obj) or the virtual
// host style (<bucket>.storage.googleapis.com/obj). An empty bucket allows
// nothing.
func IsBucketURL(raw, bucket string) bool {
	if bucket == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || u.User != nil || u.Port() != "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	switch host {
	case gcsHost:
		return strings.HasPrefix(u.EscapedPath(), "/"+bucket+"/")
	case bucket + "." + gcsHost:
		return len(u.Path) > 1
	}
	return false
}
