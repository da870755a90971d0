package query

// Key names a cached read. The set of names is closed.
type Key struct {
	Name string
	ID   string // post id for NamePostByID
}

// Cached read names.
const (
	NameRecentPosts = "recent-posts"
	NamePostsList   = "posts-list"
	NamePostByID    = "post-by-id"
	NameCurrentUser = "current-user"
)

// RecentPosts is the newest posts feed.
func RecentPosts() Key { return Key{Name: NameRecentPosts} }

// PostsList is the explore list.
func PostsList() Key { return Key{Name: NamePostsList} }

// CurrentUser is the signed-in profile.
func CurrentUser() Key { return Key{Name: NameCurrentUser} }

// PostByID is a single post.
func PostByID(id string) Key { return Key{Name: NamePostByID, ID: id} }

func (k Key) String() string {
	if k.ID == "" {
		return k.Name
	}
	return k.Name + "/" + k.ID
}

// Mutation is a write performed through the client.
type Mutation uint8

// Writes known to the invalidation table.
const (
	CreateUserAccount Mutation = iota + 1
	SignIn
	SignOut
	CreatePost
	UpdatePost
	DeletePost
	LikePost
	SavePost
	DeleteSavedPost
)

func (m Mutation) String() string {
	switch m {
	case CreateUserAccount:
		return "create-user-account"
	case SignIn:
		return "sign-in"
	case SignOut:
		return "sign-out"
	case CreatePost:
		return "create-post"
	case UpdatePost:
		return "update-post"
	case DeletePost:
		return "delete-post"
	case LikePost:
		return "like-post"
	case SavePost:
		return "save-post"
	case DeleteSavedPost:
		return "delete-saved-post"
	default:
		return "unknown"
	}
}

// Invalidates lists the keys made stale by a successful m on postID.
func Invalidates(m Mutation, postID string) []Key {
	switch m {
	case CreatePost:
		return []Key{RecentPosts()}
	case LikePost:
		return []Key{PostByID(postID), RecentPosts(), PostsList(), CurrentUser()}
	case SavePost, DeleteSavedPost:
		return []Key{RecentPosts(), PostsList(), CurrentUser()}
	case UpdatePost, DeletePost:
		return []Key{PostByID(postID), RecentPosts(), PostsList()}
	case SignIn, SignOut:
		return []Key{CurrentUser()}
	default:
		return nil
	}
}
