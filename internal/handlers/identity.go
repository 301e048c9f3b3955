package handlers

import (
	"net/http"
	"strings"

	"github.com/petbond/backend/internal/logging"
)

// identify resolves the Authorization bearer token to a user ID via the
// session manager. On failure it writes a 401 and returns false; token
// contents are never logged.
func identify(w http.ResponseWriter, r *http.Request, sessions SessionManager) (string, bool) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if sessions == nil {
		logger.Error("session manager unavailable")
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "session service unavailable"})
		return "", false
	}

	token := bearerToken(r)
	if token == "" {
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		return "", false
	}

	userID, err := sessions.Identify(ctx, token)
	if err != nil {
		logger.Warn("token rejected", "error", err)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired session"})
		return "", false
	}

	return userID, true
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
