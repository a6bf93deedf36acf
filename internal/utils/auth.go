package utils

import (
  "net/http"
  "strings"
)

// ExtractToken finds the caller's identity token. Lookup order: bearer header,
// "token" query param when allowQuery is set (browsers cannot set headers on
// websocket upgrades), then the identity provider's session cookie when
// cookieName is set.
func ExtractToken(r *http.Request, cookieName string, allowQuery bool) string {
  authHeader := r.Header.Get("Authorization")
  if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
    return strings.TrimSpace(authHeader[7:])
  }
  if allowQuery {
    if qToken := r.URL.Query().Get("token"); qToken != "" {
      return qToken
    }
  }
  if cookieName != "" {
    if ck, err := r.Cookie(cookieName); err == nil && ck.Value != "" {
      return ck.Value
    }
  }
  return ""
}
