package llm

import (
	"context"
	"errors"
	"regexp"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/yoockh/yoointerview/internal/utils"
)

// credentialPattern matches vendor messages for quota, rate limit and key
// problems. The genai REST client reports these as plain text.
var credentialPattern = regexp.MustCompile(`(?i)api[ _-]?key|quota|exhaust|rate[ _-]?limit|insufficient|invalid (api|key|credential)|\b(401|403|429)\b|resource_exhausted|permission_denied|unauthenticated`)

// IsCredentialError reports whether err means the current credential cannot
// serve the request and another one should be tried.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, utils.ErrCredentialsExhausted) {
		return true
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted, codes.Unauthenticated, codes.PermissionDenied:
			return true
		case codes.OK, codes.Unknown:
		default:
			return false
		}
	}
	return credentialPattern.MatchString(err.Error())
}
