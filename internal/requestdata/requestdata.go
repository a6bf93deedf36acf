package requestdata

import (
  "context"
)

type key struct{}

var requestDataKey key

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
  return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
  val := ctx.Value(requestDataKey)
  if rd, ok := val.(*RequestData); ok {
    return rd
  }
  return nil
}

// RequestData is the verified caller identity for one request.
type RequestData struct {
  TokenString     string
  UserID          string
  UserEmail       string
  UserName        string
  RequestID       string
}

// OwnerFrom returns the owner identity (email) carried by ctx, or "" when the
// request is unauthenticated.
func OwnerFrom(ctx context.Context) string {
  rd := GetRequestData(ctx)
  if rd == nil {
    return ""
  }
  return rd.UserEmail
}
