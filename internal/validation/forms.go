// Package validation declares the sign-up, sign-in and post forms and checks them
// before anything is sent to the backend.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/and161185/snapgram/internal/errs"
	"github.com/and161185/snapgram/internal/model"
)

// SignUp is the sign-up form.
type SignUp struct {
	Name     string `form:"name" validate:"min=2,max=50"`
	Username string `form:"username" validate:"min=2"`
	Email    string `form:"email" validate:"email"`
	Password string `form:"password" validate:"min=8"`
}

// NewUser returns the validated input for account creation.
func (f SignUp) NewUser() model.NewUser {
	return model.NewUser{Name: f.Name, Username: f.Username, Email: f.Email, Password: f.Password}
}

// SignIn is the sign-in form.
type SignIn struct {
	Email    string `form:"email" validate:"email"`
	Password string `form:"password" validate:"min=8"`
}

// Post is the post creation form. Tags stay a comma-separated string.
type Post struct {
	Caption  string             `form:"caption" validate:"min=5,max=2200"`
	Location string             `form:"location" validate:"min=2,max=100"`
	Tags     string             `form:"tags"`
	Files    []model.Attachment `form:"file" validate:"min=1"`
}

// NewPost returns the validated input for post creation by userID.
func (f Post) NewPost(userID string) model.NewPost {
	return model.NewPost{UserID: userID, Caption: f.Caption, Location: f.Location, Tags: f.Tags, Files: f.Files}
}

// EditPost is the post edit form; a new file is optional.
type EditPost struct {
	Caption  string             `form:"caption" validate:"min=5,max=2200"`
	Location string             `form:"location" validate:"min=2,max=100"`
	Tags     string             `form:"tags"`
	Files    []model.Attachment `form:"file"`
}

// UpdatePost returns the validated input for updating post.
func (f EditPost) UpdatePost(post *model.Post) model.UpdatePost {
	return model.UpdatePost{
		PostID:   post.ID,
		ImageID:  post.ImageID,
		ImageURL: post.ImageURL,
		Caption:  f.Caption,
		Location: f.Location,
		Tags:     f.Tags,
		Files:    f.Files,
	}
}

// FieldError is a single human-readable field failure.
type FieldError struct {
	Field   string
	Message string
}

// FieldErrors lists failing fields in form order.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// Message returns the message for field, if it failed.
func (fe FieldErrors) Message(field string) (string, bool) {
	for _, e := range fe {
		if e.Field == field {
			return e.Message, true
		}
	}
	return "", false
}

// messages maps field -> failed rule -> text.
var messages = map[string]map[string]string{
	"name": {
		"min": "Name must be at least 2 characters.",
		"max": "Name must be at most 50 characters.",
	},
	"username": {"min": "Username must be at least 2 characters."},
	"email":    {"email": "Invalid email."},
	"password": {"min": "Password must be at least 8 characters."},
	"caption": {
		"min": "Caption must be at least 5 characters.",
		"max": "Caption must be at most 2200 characters.",
	},
	"location": {
		"min": "Location must be at least 2 characters.",
		"max": "Location must be at most 100 characters.",
	},
	"file": {"min": "Please attach an image."},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks form and returns nil or a validation-kind error wrapping FieldErrors.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs.E("validate", errs.KindValidation, err)
	}
	out := make(FieldErrors, 0, len(ve))
	for _, fe := range ve {
		msg, ok := messages[fe.Field()][fe.Tag()]
		if !ok {
			msg = fmt.Sprintf("failed %q rule", fe.Tag())
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return errs.E("validate", errs.KindValidation, out)
}

// Fields extracts field errors from a Validate result.
func Fields(err error) FieldErrors {
	var fe FieldErrors
	if errors.As(err, &fe) {
		return fe
	}
	return nil
}
