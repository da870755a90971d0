package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/and161185/snapgram/internal/api"
	"github.com/and161185/snapgram/internal/backend"
	"github.com/and161185/snapgram/internal/config"
	"github.com/and161185/snapgram/internal/migrate"
	"github.com/and161185/snapgram/internal/model"
	"github.com/and161185/snapgram/internal/query"
	"github.com/and161185/snapgram/internal/validation"
)

// notice is shown for any failed write.
const notice = "Something went wrong. Please try again."

var (
	errUsage       = errors.New("usage")
	errReported    = errors.New("reported")
	errSignedOut   = errors.New("not signed in; run sg sign-in")
	errNotCreator  = errors.New("only the creator can change this post")
	errNoRenderer  = errors.New("preview rendering needs the postgres backend")
	errMissingFlag = errors.New("missing required flag")
)

// previewRenderer is implemented by backends that can render previews locally.
type previewRenderer interface {
	RenderPreview(ctx context.Context, bucketID, fileID string, opts backend.PreviewOptions) ([]byte, error)
}

type app struct {
	cfg    *config.Config
	be     backend.Backend
	client *query.Client
	log    *zap.Logger
	out    io.Writer
	errOut io.Writer
}

func newApp(cfg *config.Config, be backend.Backend, log *zap.Logger, out, errOut io.Writer) *app {
	adapter := api.NewAdapter(be, cfg.Collections, log)
	return &app{
		cfg:    cfg,
		be:     be,
		client: query.NewClient(adapter, query.NewCache(log), log),
		log:    log,
		out:    out,
		errOut: errOut,
	}
}

func (a *app) printJSON(v any) {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// invalid prints field errors of a rejected form.
func (a *app) invalid(err error) error {
	for _, fe := range validation.Fields(err) {
		fmt.Fprintf(a.errOut, "%s: %s\n", fe.Field, fe.Message)
	}
	return errReported
}

// failed prints the generic notice for a failed write.
func (a *app) failed(err error) error {
	a.log.Debug("write failed", zap.Error(err))
	fmt.Fprintln(a.errOut, notice)
	return errReported
}

func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.errOut)
	return fs
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "migrate":
		return a.migrate(ctx)
	case "sign-up":
		return a.signUp(ctx, args)
	case "sign-in":
		return a.signIn(ctx, args)
	case "sign-out":
		return a.signOut(ctx)
	case "me":
		return a.me(ctx)
	case "post":
		return a.post(ctx, args)
	case "feed":
		return a.list(ctx, a.client.RecentPosts)
	case "posts":
		return a.list(ctx, a.client.ListPosts)
	case "show":
		return a.show(ctx, args)
	case "like":
		return a.like(ctx, args)
	case "save":
		return a.save(ctx, args)
	case "unsave":
		return a.unsave(ctx, args)
	case "edit":
		return a.edit(ctx, args)
	case "rm":
		return a.rm(ctx, args)
	case "preview":
		return a.preview(ctx, args)
	default:
		return errUsage
	}
}

func (a *app) migrate(ctx context.Context) error {
	if a.cfg.Backend != config.BackendPostgres {
		return errors.New("migrate needs the postgres backend")
	}
	if err := migrate.Up(ctx, a.cfg.DSN); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	if a.cfg.Debug {
		if err := migrate.Status(ctx, a.cfg.DSN); err != nil {
			return err
		}
	}
	v, err := migrate.Version(ctx, a.cfg.DSN)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "schema version %d\n", v)
	return nil
}

func (a *app) signUp(ctx context.Context, args []string) error {
	var f validation.SignUp
	fs := a.flags("sign-up")
	fs.StringVar(&f.Name, "name", "", "display name")
	fs.StringVar(&f.Username, "username", "", "username")
	fs.StringVar(&f.Email, "email", "", "email")
	fs.StringVar(&f.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validation.Validate(f); err != nil {
		return a.invalid(err)
	}

	user, err := a.client.CreateUserAccount(ctx, f.NewUser())
	if err != nil {
		return a.failed(err)
	}
	if err := a.startSession(ctx, f.Email, f.Password); err != nil {
		return err
	}
	a.printJSON(user)
	return nil
}

func (a *app) signIn(ctx context.Context, args []string) error {
	var f validation.SignIn
	fs := a.flags("sign-in")
	fs.StringVar(&f.Email, "email", "", "email")
	fs.StringVar(&f.Password, "password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validation.Validate(f); err != nil {
		return a.invalid(err)
	}
	if err := a.startSession(ctx, f.Email, f.Password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}

// startSession signs in, persists the session and checks that a profile exists.
func (a *app) startSession(ctx context.Context, email, password string) error {
	s, err := a.client.SignIn(ctx, email, password)
	if err != nil {
		fmt.Fprintln(a.errOut, "Sign in failed. Please try again.")
		a.log.Debug("sign in failed", zap.Error(err))
		return errReported
	}
	if err := saveSession(a.cfg.Backend, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	user, err := a.client.CurrentUser(ctx)
	if err != nil || user == nil {
		return a.failed(err)
	}
	return nil
}

func (a *app) signOut(ctx context.Context) error {
	err := a.client.SignOut(ctx)
	if rerr := removeSession(); rerr != nil {
		return rerr
	}
	if err != nil {
		return a.failed(err)
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}

// currentUser returns the signed-in profile or errSignedOut.
func (a *app) currentUser(ctx context.Context) (*model.User, error) {
	user, err := a.client.CurrentUser(ctx)
	if err != nil {
		a.log.Debug("current user", zap.Error(err))
		return nil, errSignedOut
	}
	if user == nil {
		return nil, errSignedOut
	}
	return user, nil
}

func (a *app) me(ctx context.Context) error {
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	a.printJSON(user)
	return nil
}

type postFlags struct {
	id, caption, location, tags, file string
}

func (a *app) postFlagSet(name string, withID bool) (*flag.FlagSet, *postFlags) {
	var p postFlags
	fs := a.flags(name)
	if withID {
		fs.StringVar(&p.id, "id", "", "post id")
	}
	fs.StringVar(&p.caption, "caption", "", "caption")
	fs.StringVar(&p.location, "location", "", "location")
	fs.StringVar(&p.tags, "tags", "", "comma-separated tags")
	fs.StringVar(&p.file, "file", "", "image file ('-'=stdin)")
	return fs, &p
}

func (a *app) post(ctx context.Context, args []string) error {
	fs, p := a.postFlagSet("post", false)
	if err := fs.Parse(args); err != nil {
		return err
	}
	files, err := readAttachments(p.file)
	if err != nil {
		return err
	}
	f := validation.Post{Caption: p.caption, Location: p.location, Tags: p.tags, Files: files}
	if err := validation.Validate(f); err != nil {
		return a.invalid(err)
	}

	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	post, err := a.client.CreatePost(ctx, f.NewPost(user.ID))
	if err != nil {
		return a.failed(err)
	}
	a.printJSON(post)
	return nil
}

// list prints posts; a failed read prints an empty list.
func (a *app) list(ctx context.Context, read func(context.Context) ([]model.Post, error)) error {
	posts, err := read(ctx)
	if err != nil {
		a.log.Debug("list posts", zap.Error(err))
		posts = []model.Post{}
	}
	a.printJSON(posts)
	return nil
}

func (a *app) idFlag(name string, args []string) (string, error) {
	fs := a.flags(name)
	id := fs.String("id", "", "id")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *id == "" {
		return "", fmt.Errorf("%w: -id", errMissingFlag)
	}
	return *id, nil
}

func (a *app) show(ctx context.Context, args []string) error {
	id, err := a.idFlag("show", args)
	if err != nil {
		return err
	}
	post, err := a.client.PostByID(ctx, id)
	if err != nil {
		a.log.Debug("show post", zap.Error(err))
		post = nil
	}
	a.printJSON(post)
	return nil
}

func (a *app) like(ctx context.Context, args []string) error {
	id, err := a.idFlag("like", args)
	if err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	post, err := a.client.PostByID(ctx, id)
	if err != nil {
		return a.failed(err)
	}
	updated, err := a.client.LikePost(ctx, id, query.ToggleLike(post.Likes, user.ID))
	if err != nil {
		return a.failed(err)
	}
	state := "unliked"
	if updated.LikedBy(user.ID) {
		state = "liked"
	}
	fmt.Fprintf(a.out, "%s (%d likes)\n", state, len(updated.Likes))
	return nil
}

func (a *app) save(ctx context.Context, args []string) error {
	id, err := a.idFlag("save", args)
	if err != nil {
		return err
	}
	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	s, err := a.client.SavePost(ctx, id, user.ID)
	if err != nil {
		return a.failed(err)
	}
	fmt.Fprintln(a.out, s.ID)
	return nil
}

func (a *app) unsave(ctx context.Context, args []string) error {
	id, err := a.idFlag("unsave", args)
	if err != nil {
		return err
	}
	if err := a.client.DeleteSavedPost(ctx, id); err != nil {
		return a.failed(err)
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}

// ownPost loads a post of the signed-in user.
func (a *app) ownPost(ctx context.Context, id string) (*model.Post, error) {
	user, err := a.currentUser(ctx)
	if err != nil {
		return nil, err
	}
	post, err := a.client.PostByID(ctx, id)
	if err != nil {
		return nil, a.failed(err)
	}
	if post.CreatorID != user.ID {
		return nil, errNotCreator
	}
	return post, nil
}

func (a *app) edit(ctx context.Context, args []string) error {
	fs, p := a.postFlagSet("edit", true)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if p.id == "" {
		return fmt.Errorf("%w: -id", errMissingFlag)
	}
	files, err := readAttachments(p.file)
	if err != nil {
		return err
	}
	f := validation.EditPost{Caption: p.caption, Location: p.location, Tags: p.tags, Files: files}
	if err := validation.Validate(f); err != nil {
		return a.invalid(err)
	}

	post, err := a.ownPost(ctx, p.id)
	if err != nil {
		return err
	}
	updated, err := a.client.UpdatePost(ctx, f.UpdatePost(post))
	if err != nil {
		return a.failed(err)
	}
	a.printJSON(updated)
	return nil
}

func (a *app) rm(ctx context.Context, args []string) error {
	id, err := a.idFlag("rm", args)
	if err != nil {
		return err
	}
	post, err := a.ownPost(ctx, id)
	if err != nil {
		return err
	}
	if err := a.client.DeletePost(ctx, post.ID, post.ImageID); err != nil {
		return a.failed(err)
	}
	fmt.Fprintln(a.out, "ok")
	return nil
}

func (a *app) preview(ctx context.Context, args []string) error {
	fs := a.flags("preview")
	id := fs.String("id", "", "post id")
	out := fs.String("o", "", "output file")
	w := fs.Int("w", 2000, "width")
	h := fs.Int("h", 2000, "height")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" || *out == "" {
		return fmt.Errorf("%w: -id and -o", errMissingFlag)
	}
	r, ok := a.be.(previewRenderer)
	if !ok {
		return errNoRenderer
	}
	post, err := a.client.PostByID(ctx, *id)
	if err != nil {
		return err
	}
	img, err := r.RenderPreview(ctx, a.cfg.Collections.StorageID, post.ImageID, backend.PreviewOptions{
		Width: *w, Height: *h, Gravity: backend.GravityTop, Quality: 100,
	})
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, img, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s (%d bytes)\n", *out, len(img))
	return nil
}
