package session

import (
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/salonbook/libs/auth"
)

const (
	HeaderWorkerID     = "X-Worker-Id"
	HeaderClientName   = "X-Client-Name"
	HeaderClientEmail  = "X-Client-Email"
	HeaderInstallation = "X-Installation-Id"
)

type Client struct {
	Name  string
	Email string
}

// Resolver reads the acting identity off a request. A worker is only
// recognised from a verified worker token unless the deployment sits behind a
// proxy that sets X-Worker-Id from its own verification.
type Resolver struct {
	signer            *auth.Signer
	trustWorkerHeader bool
}

type ResolverOption func(*Resolver)

// TrustWorkerHeader accepts X-Worker-Id on requests without an Authorization
// header. Only enable it when an upstream proxy strips and re-sets the header.
func TrustWorkerHeader(trust bool) ResolverOption {
	return func(r *Resolver) { r.trustWorkerHeader = trust }
}

func NewResolver(signer *auth.Signer, opts ...ResolverOption) *Resolver {
	r := &Resolver{signer: signer}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// claims returns the verified claims and whether an Authorization header was
// present at all. A present but invalid token yields (nil, true).
func (r *Resolver) claims(req *http.Request) (*auth.Claims, bool) {
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if header == "" {
		return nil, false
	}
	if r.signer == nil {
		return nil, true
	}
	token := auth.BearerToken(header)
	if token == "" {
		return nil, true
	}
	c, err := r.signer.Parse(token)
	if err != nil {
		return nil, true
	}
	return c, true
}

// WorkerID returns "" when no verified worker identity is present.
func (r *Resolver) WorkerID(req *http.Request) string {
	c, presented := r.claims(req)
	if presented {
		if c != nil && c.Role == auth.RoleWorker {
			return c.Subject
		}
		return ""
	}
	if !r.trustWorkerHeader {
		return ""
	}
	return strings.TrimSpace(req.Header.Get(HeaderWorkerID))
}

// Client prefers a client token. Without an Authorization header the plain
// identity headers are used; a rejected token yields no client.
func (r *Resolver) Client(req *http.Request) Client {
	c, presented := r.claims(req)
	if presented {
		if c != nil && c.Role == auth.RoleClient {
			return Client{Name: c.Name, Email: c.Email}
		}
		return Client{}
	}
	return Client{
		Name:  strings.TrimSpace(req.Header.Get(HeaderClientName)),
		Email: strings.TrimSpace(req.Header.Get(HeaderClientEmail)),
	}
}

func Installation(req *http.Request) string {
	return strings.TrimSpace(req.Header.Get(HeaderInstallation))
}

// Describe names the actor for access logs.
func (r *Resolver) Describe(req *http.Request) string {
	if id := r.WorkerID(req); id != "" {
		return "worker:" + id
	}
	if c := r.Client(req); c.Name != "" || c.Email != "" {
		if c.Email != "" {
			return "client:" + c.Email
		}
		return "client:" + c.Name
	}
	return ""
}
