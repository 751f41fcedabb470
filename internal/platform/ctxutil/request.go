package ctxutil

import "context"

type requestDataKey struct{}

// RequestData is the caller context recorded alongside audit entries.
type RequestData struct {
	UserEmail string
	IPAddress string
	UserAgent string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
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
