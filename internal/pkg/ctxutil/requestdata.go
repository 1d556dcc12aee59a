package ctxutil

import "context"

type requestDataKey struct{}

// RequestData carries the authenticated caller for one HTTP request. Services never read it;
// handlers pull the ids out and pass them explicitly.
type RequestData struct {
	TokenString string
	UserID      string
	Email       string
	RequestID   string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}
