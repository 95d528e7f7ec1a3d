package ez

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"arena-social/internal/domain"
	resp "arena-social/internal/transport/http/response"
)

// Context keys set by middleware.AuthJWT.
const (
	KeyUserID = "userId"
	KeyRole   = "role"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, log *zap.Logger) EZ {
	if log == nil {
		log = zap.NewNop()
	}
	return EZ{g: g, log: log}
}

/* ================== Action ================== */

type Binder string

const (
	BindJSON  Binder = "json"  // request body
	BindQuery Binder = "query" // ?a=b
	BindNone  Binder = "none"  // handler reads c.Param itself
)

// Action is one endpoint: I is the bound input, O the success payload.
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Auth    bool     // require a token-derived userId
	Roles   []string // optional role allow-list, implies Auth
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		if a.Auth || len(a.Roles) > 0 {
			if c.GetString(KeyUserID) == "" {
				resp.Abort(c, http.StatusUnauthorized, "unauthorized")
				return
			}
			if len(a.Roles) > 0 && !hasRole(c.GetString(KeyRole), a.Roles) {
				resp.Abort(c, http.StatusForbidden, "forbidden")
				return
			}
		}

		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		}
		if bindErr != nil {
			e.log.Debug("bind failed", zap.String("path", c.FullPath()), zap.Error(bindErr))
			resp.Abort(c, http.StatusBadRequest, "invalid request")
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			e.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

// fail writes err; internal causes go to the log only.
func (e EZ) fail(c *gin.Context, err error) {
	if domain.KindOf(err) == domain.KindInternal {
		e.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	resp.Fail(c, err)
}

func hasRole(role string, allowed []string) bool {
	for _, r := range allowed {
		if role == r {
			return true
		}
	}
	return false
}

/* ================== param helpers ================== */

// ParamKey parses a path identifier into a lookup key.
func ParamKey(c *gin.Context, name string) (domain.UserLookupKey, error) {
	return domain.ParseLookupKey(c.Param(name))
}

// ParamID parses a positive numeric path parameter.
func ParamID(c *gin.Context, name string) (uint, error) {
	return ParseID(c.Param(name), name)
}

// QueryID parses a positive numeric query parameter.
func QueryID(c *gin.Context, name string) (uint, error) {
	return ParseID(c.Query(name), name)
}

func ParseID(raw, name string) (uint, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, domain.Validation("missing " + name)
	}
	n, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || n == 0 {
		return 0, domain.Validation("invalid " + name)
	}
	return uint(n), nil
}

// QueryInt parses an optional non-negative integer query parameter.
func QueryInt(c *gin.Context, name string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.Validation("invalid " + name)
	}
	return n, nil
}

// UserID returns the authenticated user's id set by AuthJWT.
func UserID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.GetString(KeyUserID), 10, 0)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}
