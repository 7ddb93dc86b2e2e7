package graph

import "github.com/listenupapp/bookshelf-server/internal/service"

// UserInput mirrors the UserInput input type.
type UserInput struct {
	Username   string
	Email      string
	Password   string
	SavedBooks *[]*BookInput
}

// BookInput mirrors the BookInput input type.
type BookInput struct {
	Authors     *[]*string
	Description *string
	Title       string
	BookID      string
	Image       *string
	Link        *string
}

func (in UserInput) request() service.RegisterRequest {
	req := service.RegisterRequest{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
	}
	if in.SavedBooks != nil {
		for _, b := range *in.SavedBooks {
			if b != nil {
				req.SavedBooks = append(req.SavedBooks, b.request())
			}
		}
	}
	return req
}

func (in BookInput) request() service.BookRequest {
	req := service.BookRequest{
		BookID:      in.BookID,
		Title:       in.Title,
		Description: deref(in.Description),
		Image:       deref(in.Image),
		Link:        deref(in.Link),
	}
	if in.Authors != nil {
		req.Authors = make([]string, 0, len(*in.Authors))
		for _, a := range *in.Authors {
			if a != nil {
				req.Authors = append(req.Authors, *a)
			}
		}
	}
	return req
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
