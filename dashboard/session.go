package dashboard

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie names the cookie identifying a browser session.
const SessionCookie = "collabwalk_session"

const sessionKey = "collabwalk.session"

// sessionGuard lets each session run at most one walk at a time.
type sessionGuard struct {
	mu      sync.Mutex
	running map[string]struct{}
}

func newSessionGuard() *sessionGuard {
	return &sessionGuard{running: make(map[string]struct{})}
}

// acquire marks id busy. It reports false when id already runs a walk.
func (g *sessionGuard) acquire(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.running[id]; busy {
		return false
	}
	g.running[id] = struct{}{}
	return true
}

func (g *sessionGuard) release(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.running, id)
}

// sessionMiddleware attaches a session ID to every request, issuing a new
// cookie when the request has none or an unparsable one.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, 0, "/", "", false, true)
		}
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
