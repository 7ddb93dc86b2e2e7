package graph

import (
	"github.com/graph-gophers/graphql-go"
	"github.com/listenupapp/bookshelf-server/internal/domain"
)

// AuthResolver resolves the Auth type.
type AuthResolver struct {
	token string
	user  *domain.User
}

// Token is the bearer token to send on later requests.
func (r *AuthResolver) Token() graphql.ID {
	return graphql.ID(r.token)
}

// User is the signed-in account.
func (r *AuthResolver) User() *UserResolver {
	return newUserResolver(r.user)
}

// UserResolver resolves the User type. It has no password field, so a hash
// can never be selected.
type UserResolver struct {
	u *domain.User
}

func newUserResolver(u *domain.User) *UserResolver {
	if u == nil {
		return nil
	}
	return &UserResolver{u: u}
}

// ID resolves the _id field.
func (r *UserResolver) ID() *graphql.ID {
	id := graphql.ID(r.u.ID)
	return &id
}

func (r *UserResolver) Username() *string {
	return &r.u.Username
}

func (r *UserResolver) Email() *string {
	return &r.u.Email
}

func (r *UserResolver) SavedBooks() *[]*BookResolver {
	books := make([]*BookResolver, 0, len(r.u.SavedBooks))
	for i := range r.u.SavedBooks {
		books = append(books, &BookResolver{b: r.u.SavedBooks[i]})
	}
	return &books
}

func (r *UserResolver) BookCount() *int32 {
	n := int32(r.u.BookCount()) //nolint:gosec // collection size fits comfortably
	return &n
}

// BookResolver resolves the Book type.
type BookResolver struct {
	b domain.Book
}

func (r *BookResolver) BookID() *graphql.ID {
	id := graphql.ID(r.b.BookID)
	return &id
}

func (r *BookResolver) Title() *string {
	return &r.b.Title
}

func (r *BookResolver) Authors() *[]*string {
	if r.b.Authors == nil {
		return nil
	}
	authors := make([]*string, len(r.b.Authors))
	for i := range r.b.Authors {
		authors[i] = &r.b.Authors[i]
	}
	return &authors
}

func (r *BookResolver) Description() *string {
	return optional(r.b.Description)
}

func (r *BookResolver) Image() *string {
	return optional(r.b.Image)
}

func (r *BookResolver) Link() *string {
	return optional(r.b.Link)
}

// optional maps an unset string to null.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
