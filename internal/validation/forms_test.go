package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/snapgram/internal/errs"
	"github.com/and161185/snapgram/internal/model"
)

func validSignUp() SignUp {
	return SignUp{Name: "Ann Lee", Username: "ann", Email: "ann@example.com", Password: "password1"}
}

func TestSignUp_ValidForwardsUnchanged(t *testing.T) {
	t.Parallel()

	cases := []SignUp{
		validSignUp(),
		{Name: "Al", Username: "al", Email: "a@b.co", Password: "12345678"},
		{Name: strings.Repeat("n", 50), Username: strings.Repeat("u", 80), Email: "x.y+z@mail.example.org", Password: strings.Repeat("p", 64)},
		{Name: "Zoë", Username: "zö", Email: "zoe@example.com", Password: "pässwörd"},
	}
	for _, f := range cases {
		require.NoError(t, Validate(f), "%+v", f)
		require.Equal(t, model.NewUser{Name: f.Name, Username: f.Username, Email: f.Email, Password: f.Password}, f.NewUser())
	}
}

func TestSignUp_SingleViolationReportsOnlyThatField(t *testing.T) {
	t.Parallel()

	cases := map[string]func(*SignUp){
		"name":     func(f *SignUp) { f.Name = "A" },
		"username": func(f *SignUp) { f.Username = "a" },
		"email":    func(f *SignUp) { f.Email = "not-an-email" },
		"password": func(f *SignUp) { f.Password = "1234567" },
	}
	for field, mutate := range cases {
		f := validSignUp()
		mutate(&f)

		err := Validate(f)
		require.Error(t, err, field)
		require.Equal(t, errs.KindValidation, errs.KindOf(err))

		fields := Fields(err)
		require.Len(t, fields, 1, field)
		require.Equal(t, field, fields[0].Field)
		require.NotEmpty(t, fields[0].Message)
	}
}

func TestSignUp_NameTooLong(t *testing.T) {
	t.Parallel()

	f := validSignUp()
	f.Name = strings.Repeat("n", 51)
	msg, ok := Fields(Validate(f)).Message("name")
	require.True(t, ok)
	require.Equal(t, "Name must be at most 50 characters.", msg)
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	require.NoError(t, Validate(SignIn{Email: "a@b.co", Password: "password1"}))

	fields := Fields(Validate(SignIn{Email: "", Password: "short"}))
	require.Len(t, fields, 2)
	require.Equal(t, "email", fields[0].Field)
	require.Equal(t, "password", fields[1].Field)
	require.Equal(t, "Password must be at least 8 characters.", fields[1].Message)
}

func TestPost(t *testing.T) {
	t.Parallel()

	ok := Post{
		Caption:  "Sunset at the pier",
		Location: "Lisbon",
		Tags:     "Trending, Learning, Life-style",
		Files:    []model.Attachment{{Name: "a.jpg", Data: []byte{1}}},
	}
	require.NoError(t, Validate(ok))
	np := ok.NewPost("u1")
	require.Equal(t, "u1", np.UserID)
	require.Equal(t, ok.Tags, np.Tags)

	bad := ok
	bad.Caption = "hey"
	bad.Location = strings.Repeat("l", 101)
	bad.Files = nil
	fields := Fields(Validate(bad))
	require.Len(t, fields, 3)
	require.Equal(t, "caption", fields[0].Field)
	require.Equal(t, "location", fields[1].Field)
	require.Equal(t, "file", fields[2].Field)
	require.Equal(t, "Please attach an image.", fields[2].Message)

	long := ok
	long.Caption = strings.Repeat("c", 2201)
	msg, found := Fields(Validate(long)).Message("caption")
	require.True(t, found)
	require.Equal(t, "Caption must be at most 2200 characters.", msg)
}

func TestEditPost_FileOptional(t *testing.T) {
	t.Parallel()

	f := EditPost{Caption: "Updated caption", Location: "Porto"}
	require.NoError(t, Validate(f))

	up := f.UpdatePost(&model.Post{ID: "p1", ImageID: "img1", ImageURL: "http://x/img1"})
	require.Equal(t, "p1", up.PostID)
	require.Equal(t, "img1", up.ImageID)
	require.Empty(t, up.Files)
}

func TestFieldErrors_Error(t *testing.T) {
	t.Parallel()

	fe := FieldErrors{{Field: "email", Message: "Invalid email."}, {Field: "password", Message: "short"}}
	require.Equal(t, "email: Invalid email.; password: short", fe.Error())
	require.Nil(t, Fields(nil))
}
