package context

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	methodKey    contextKey = "method"
	routeKey     contextKey = "route"
	remoteIPKey  contextKey = "remote_ip"
	refererKey   contextKey = "referer"
)

func set(ctx context.Context, key contextKey, value string) context.Context {
	return context.WithValue(ctx, key, value)
}

func get(ctx context.Context, key contextKey) string {
	value, _ := ctx.Value(key).(string)
	return value
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return set(ctx, requestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	return get(ctx, requestIDKey)
}

func SetUserID(ctx context.Context, id string) context.Context {
	return set(ctx, userIDKey, id)
}

func GetUserID(ctx context.Context) string {
	return get(ctx, userIDKey)
}

func SetMethod(ctx context.Context, method string) context.Context {
	return set(ctx, methodKey, method)
}

func GetMethod(ctx context.Context) string {
	return get(ctx, methodKey)
}

func SetRoute(ctx context.Context, route string) context.Context {
	return set(ctx, routeKey, route)
}

func GetRoute(ctx context.Context) string {
	return get(ctx, routeKey)
}

func SetRemoteIP(ctx context.Context, ip string) context.Context {
	return set(ctx, remoteIPKey, ip)
}

func GetRemoteIP(ctx context.Context) string {
	return get(ctx, remoteIPKey)
}

func SetReferer(ctx context.Context, referer string) context.Context {
	return set(ctx, refererKey, referer)
}

func GetReferer(ctx context.Context) string {
	return get(ctx, refererKey)
}
