package httputil

import "github.com/gin-gonic/gin"

// IHttpHandler serves one resource. Its routes live under Root() in every access group.
type IHttpHandler interface {
	Root() string
	SetRoutes(pub *gin.RouterGroup, private *gin.RouterGroup, admin *gin.RouterGroup)
}

// Mount registers each handler under its root in the public, private and admin groups.
func Mount(pub, private, admin *gin.RouterGroup, handlers ...IHttpHandler) {
	for _, h := range handlers {
		h.SetRoutes(pub.Group(h.Root()), private.Group(h.Root()), admin.Group(h.Root()))
	}
}
