package backend

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	domainauth "github.com/initcareer/init-web/internal/domain/auth"
)

// LoginMapping holds the JMESPath expressions evaluated against a decoded login response.
type LoginMapping struct {
	Token string
	ID    string
	Name  string
	Role  string
	Email string
}

// LoginMapper turns the backend's login response into a Credential.
type LoginMapper struct {
	m LoginMapping
}

// DefaultLoginMapping matches the backend's {token,id,name,role,email} response,
// tolerating the accessToken/userId/userName/userRole spellings.
func DefaultLoginMapping() LoginMapping {
	return LoginMapping{
		Token: "token || accessToken",
		ID:    "id || userId",
		Name:  "name || userName",
		Role:  "role || userRole",
		Email: "email",
	}
}

// DefaultLoginMapper returns a mapper over DefaultLoginMapping.
func DefaultLoginMapper() *LoginMapper {
	return &LoginMapper{m: DefaultLoginMapping()}
}

// NewLoginMapper validates every expression. Empty expressions fall back to the default for that field.
func NewLoginMapper(m LoginMapping) (*LoginMapper, error) {
	def := DefaultLoginMapping()
	fields := []struct {
		name string
		expr *string
		def  string
	}{
		{"token", &m.Token, def.Token},
		{"id", &m.ID, def.ID},
		{"name", &m.Name, def.Name},
		{"role", &m.Role, def.Role},
		{"email", &m.Email, def.Email},
	}
	var errs []error
	for _, f := range fields {
		*f.expr = strings.TrimSpace(*f.expr)
		if *f.expr == "" {
			*f.expr = f.def
		}
		if _, err := jmespath.Compile(*f.expr); err != nil {
			errs = append(errs, fmt.Errorf("login %s expression %q: %w", f.name, *f.expr, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &LoginMapper{m: m}, nil
}

// Map extracts a Credential from doc, the JSON-decoded response body.
// A response without a token is an error; other fields may be absent.
func (l *LoginMapper) Map(doc any) (domainauth.Credential, error) {
	token, err := l.field(l.m.Token, doc)
	if err != nil {
		return domainauth.Credential{}, err
	}
	if token == "" {
		return domainauth.Credential{}, errors.New("login response has no token")
	}
	id, err := l.field(l.m.ID, doc)
	if err != nil {
		return domainauth.Credential{}, err
	}
	name, err := l.field(l.m.Name, doc)
	if err != nil {
		return domainauth.Credential{}, err
	}
	role, err := l.field(l.m.Role, doc)
	if err != nil {
		return domainauth.Credential{}, err
	}
	email, err := l.field(l.m.Email, doc)
	if err != nil {
		return domainauth.Credential{}, err
	}
	return domainauth.Credential{
		Token:     token,
		UserID:    id,
		UserName:  name,
		UserEmail: email,
		Role:      domainauth.ParseRole(role),
	}, nil
}

func (l *LoginMapper) field(expr string, doc any) (string, error) {
	v, err := jmespath.Search(expr, doc)
	if err != nil {
		return "", fmt.Errorf("evaluate %q: %w", expr, err)
	}
	return scalarString(v), nil
}

// scalarString renders JSON scalars; numbers print without a trailing ".0".
func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
