package httpadapter

import (
	"context"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

func TestApplyCORSHeaders(t *testing.T) {
	ctx := &app.RequestContext{}
	applyCORSHeaders(ctx)

	want := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": corsAllowMethods,
		"Access-Control-Allow-Headers": corsAllowHeaders,
		"Access-Control-Max-Age":       corsMaxAge,
	}
	for header, value := range want {
		if got := string(ctx.Response.Header.Peek(header)); got != value {
			t.Fatalf("%s mismatch: got=%q want=%q", header, got, value)
		}
	}
}

func TestCORSMiddleware_PreflightShortCircuits(t *testing.T) {
	ctx := &app.RequestContext{}
	ctx.Request.Header.SetMethod(consts.MethodOptions)

	corsMiddleware()(context.Background(), ctx)

	if got, want := ctx.Response.StatusCode(), consts.StatusNoContent; got != want {
		t.Fatalf("preflight status: got=%d want=%d", got, want)
	}
	if got := string(ctx.Response.Header.Peek("Access-Control-Allow-Methods")); got != corsAllowMethods {
		t.Fatalf("preflight missing CORS headers: %q", got)
	}
}
