package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tiktik/tiktik/internal/model"
	"github.com/tiktik/tiktik/internal/server"
)

// =========================================================================
// HELPERS
// =========================================================================

// newTestServer boots the full stack — router, services, an in-memory
// database, a temp upload dir — exactly as main would.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	srv, err := server.New(server.Config{
		TemplateDir: "../../web/templates",
		StaticDir:   "../../web/static",
		DBPath:      ":memory:",
		UploadDir:   t.TempDir(),
		JWTSecret:   "test-secret-at-least-16-chars!!",
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv.Router()
}

// doJSON sends a JSON request, optionally with a bearer token, and decodes
// the response body into out (skipped when out is nil).
func doJSON(t *testing.T, h http.Handler, method, path, token string, body, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if out != nil && rr.Code < 300 {
		require.NoError(t, json.NewDecoder(rr.Body).Decode(out))
	}
	return rr
}

type authResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
}

// toggleResponse is the body of every add/remove style toggle endpoint.
type toggleResponse struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
}

// registerUser creates an account and returns its token and user.
func registerUser(t *testing.T, h http.Handler, email, name string) authResponse {
	t.Helper()

	var res authResponse
	rr := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "hunter22",
		"name":     name,
	}, &res)
	require.Equal(t, http.StatusCreated, rr.Code, "register %s: %s", email, rr.Body.String())
	return res
}

// createVideo publishes a URL video (goes live immediately) and returns it.
func createVideo(t *testing.T, h http.Handler, token, title string) model.Video {
	t.Helper()

	var res struct {
		Video model.Video `json:"video"`
	}
	rr := doJSON(t, h, http.MethodPost, "/api/videos", token, map[string]any{
		"title":    title,
		"videoUrl": "https://example.com/" + title + ".mp4",
	}, &res)
	require.Equal(t, http.StatusCreated, rr.Code, "create video: %s", rr.Body.String())
	return res.Video
}

// =========================================================================
// AUTH FLOW
// =========================================================================

func TestRegisterLoginMe(t *testing.T) {
	h := newTestServer(t)

	reg := registerUser(t, h, "alice@example.com", "Alice")
	assert.True(t, reg.Success)
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "alice@example.com", reg.User.Email)

	var login authResponse
	rr := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter22",
	}, &login)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, reg.User.ID, login.User.ID)

	var me struct {
		User model.User `json:"user"`
	}
	rr = doJSON(t, h, http.MethodGet, "/api/me", login.Token, nil, &me)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Alice", me.User.Name)

	// Wrong password and missing token are both rejected.
	rr = doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/api/me", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	h := newTestServer(t)

	registerUser(t, h, "alice@example.com", "Alice")
	rr := doJSON(t, h, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter22",
		"name":     "Alice Again",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// =========================================================================
// VIDEO LIFECYCLE AND REACTIONS
// =========================================================================

// Publish a video, like it twice (second like removes the first), and watch
// the live counts on the detail endpoint move 0 → 1 → 0.
func TestLikeToggleRoundTrip(t *testing.T) {
	h := newTestServer(t)

	alice := registerUser(t, h, "alice@example.com", "Alice")
	video := createVideo(t, h, alice.Token, "launch-day")

	likes := func() int {
		var res struct {
			Video model.VideoView `json:"video"`
		}
		rr := doJSON(t, h, http.MethodGet, "/api/videos/"+video.ID, "", nil, &res)
		require.Equal(t, http.StatusOK, rr.Code)
		return res.Video.Likes
	}
	assert.Equal(t, 0, likes())

	var toggle toggleResponse
	rr := doJSON(t, h, http.MethodPost, "/api/videos/"+video.ID+"/like", alice.Token,
		map[string]string{"type": "like"}, &toggle)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, toggle.Success)
	assert.Equal(t, "added", toggle.Action)
	assert.Equal(t, 1, likes())

	rr = doJSON(t, h, http.MethodPost, "/api/videos/"+video.ID+"/like", alice.Token,
		map[string]string{"type": "like"}, &toggle)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "removed", toggle.Action)
	assert.Equal(t, 0, likes())

	// Unauthenticated reactions are rejected.
	rr = doJSON(t, h, http.MethodPost, "/api/videos/"+video.ID+"/like", "",
		map[string]string{"type": "like"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestVideoListingAndViews(t *testing.T) {
	h := newTestServer(t)

	alice := registerUser(t, h, "alice@example.com", "Alice")
	video := createVideo(t, h, alice.Token, "first")

	var list struct {
		Videos []model.VideoView `json:"videos"`
	}
	rr := doJSON(t, h, http.MethodGet, "/api/videos", "", nil, &list)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.Len(t, list.Videos, 1)
	assert.Equal(t, "Alice", list.Videos[0].Channel)

	// Anonymous views count too.
	rr = doJSON(t, h, http.MethodPost, "/api/videos/"+video.ID+"/view", "",
		map[string]int{"watchTime": 12}, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var detail struct {
		Video model.VideoView `json:"video"`
	}
	doJSON(t, h, http.MethodGet, "/api/videos/"+video.ID, "", nil, &detail)
	assert.Equal(t, 1, detail.Video.Views)
}

// The moderated upload path: multipart upload lands as pending and stays
// out of public listings until approved.
func TestUploadEntersModerationQueue(t *testing.T) {
	h := newTestServer(t)
	alice := registerUser(t, h, "alice@example.com", "Alice")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "raw footage"))
	part, err := mw.CreateFormFile("video", "clip.mp4")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake mp4 bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/videos/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+alice.Token)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var uploaded struct {
		Success bool        `json:"success"`
		Video   model.Video `json:"video"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&uploaded))
	assert.True(t, uploaded.Success)
	assert.Equal(t, model.StatusPending, uploaded.Video.Status)

	var list struct {
		Videos []model.VideoView `json:"videos"`
	}
	doJSON(t, h, http.MethodGet, "/api/videos", "", nil, &list)
	assert.Empty(t, list.Videos, "pending video must not be publicly listed")
}

// =========================================================================
// SUBSCRIPTIONS AND FEED
// =========================================================================

func TestSubscriptionFeedRoundTrip(t *testing.T) {
	h := newTestServer(t)

	creator := registerUser(t, h, "creator@example.com", "Creator")
	fan := registerUser(t, h, "fan@example.com", "Fan")
	createVideo(t, h, creator.Token, "episode-one")

	feed := func() []model.VideoView {
		var out struct {
			Videos []model.VideoView `json:"videos"`
		}
		rr := doJSON(t, h, http.MethodGet, "/api/feed", fan.Token, nil, &out)
		require.Equal(t, http.StatusOK, rr.Code)
		return out.Videos
	}
	assert.Empty(t, feed())

	var toggle toggleResponse
	rr := doJSON(t, h, http.MethodPost, "/api/subscriptions", fan.Token,
		map[string]string{"channelId": creator.User.ID}, &toggle)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "subscribed", toggle.Action)
	assert.Len(t, feed(), 1)

	// The channel's denormalized counter moved with the edge.
	var me struct {
		User model.User `json:"user"`
	}
	doJSON(t, h, http.MethodGet, "/api/me", creator.Token, nil, &me)
	assert.Equal(t, 1, me.User.SubscriberCount)

	rr = doJSON(t, h, http.MethodPost, "/api/subscriptions", fan.Token,
		map[string]string{"channelId": creator.User.ID}, &toggle)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "unsubscribed", toggle.Action)
	assert.Empty(t, feed())

	doJSON(t, h, http.MethodGet, "/api/me", creator.Token, nil, &me)
	assert.Equal(t, 0, me.User.SubscriberCount)
}

func TestSelfSubscribeRejected(t *testing.T) {
	h := newTestServer(t)
	alice := registerUser(t, h, "alice@example.com", "Alice")

	rr := doJSON(t, h, http.MethodPost, "/api/subscriptions", alice.Token,
		map[string]string{"channelId": alice.User.ID}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// =========================================================================
// COMMENTS
// =========================================================================

func TestCommentFlow(t *testing.T) {
	h := newTestServer(t)

	alice := registerUser(t, h, "alice@example.com", "Alice")
	bob := registerUser(t, h, "bob@example.com", "Bob")
	video := createVideo(t, h, alice.Token, "discussion")

	var created struct {
		Comment model.CommentView `json:"comment"`
	}
	rr := doJSON(t, h, http.MethodPost, "/api/comments", alice.Token, map[string]string{
		"videoId": video.ID,
		"text":    "first!",
	}, &created)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "Alice", created.Comment.Author)

	// Replying threads under the parent.
	var reply struct {
		Comment model.CommentView `json:"comment"`
	}
	rr = doJSON(t, h, http.MethodPost, "/api/comments", bob.Token, map[string]string{
		"videoId":  video.ID,
		"text":     "welcome",
		"parentId": created.Comment.ID,
	}, &reply)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, created.Comment.ID, reply.Comment.ParentID)

	var list struct {
		Comments []model.CommentView `json:"comments"`
	}
	doJSON(t, h, http.MethodGet, "/api/comments/"+video.ID, "", nil, &list)
	assert.Len(t, list.Comments, 2)

	// Only the author can delete.
	rr = doJSON(t, h, http.MethodDelete, "/api/comments/"+created.Comment.ID, bob.Token, nil, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, h, http.MethodDelete, "/api/comments/"+created.Comment.ID, alice.Token, nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	// The reply went down with its parent.
	list.Comments = nil
	doJSON(t, h, http.MethodGet, "/api/comments/"+video.ID, "", nil, &list)
	assert.Empty(t, list.Comments)
}

// =========================================================================
// WATCH LATER AND PLAYLISTS
// =========================================================================

func TestWatchLaterAndPlaylists(t *testing.T) {
	h := newTestServer(t)

	alice := registerUser(t, h, "alice@example.com", "Alice")
	video := createVideo(t, h, alice.Token, "save-me")

	var toggle toggleResponse
	rr := doJSON(t, h, http.MethodPost, "/api/watch-later", alice.Token,
		map[string]string{"videoId": video.ID}, &toggle)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "added", toggle.Action)

	var saved struct {
		Videos []model.VideoView `json:"videos"`
	}
	doJSON(t, h, http.MethodGet, "/api/watch-later/"+alice.User.ID, "", nil, &saved)
	require.Len(t, saved.Videos, 1)
	assert.Equal(t, video.ID, saved.Videos[0].ID)

	var created struct {
		Playlist model.Playlist `json:"playlist"`
	}
	rr = doJSON(t, h, http.MethodPost, "/api/playlists", alice.Token,
		map[string]string{"title": "Favorites"}, &created)
	require.Equal(t, http.StatusCreated, rr.Code)
	playlist := created.Playlist

	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/playlists/%s/videos", playlist.ID), alice.Token,
		map[string]string{"videoId": video.ID}, nil)
	assert.Equal(t, http.StatusCreated, rr.Code)

	// Adding the same video again is rejected.
	rr = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/playlists/%s/videos", playlist.ID), alice.Token,
		map[string]string{"videoId": video.ID}, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var inPlaylist struct {
		Videos []model.VideoView `json:"videos"`
	}
	doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/playlists/%s/videos", playlist.ID), "", nil, &inPlaylist)
	require.Len(t, inPlaylist.Videos, 1)
	assert.Equal(t, video.ID, inPlaylist.Videos[0].ID)
}

// =========================================================================
// ADMIN AND ROUTING EDGES
// =========================================================================

func TestAdminRoutesRequireAdmin(t *testing.T) {
	h := newTestServer(t)
	alice := registerUser(t, h, "alice@example.com", "Alice")

	rr := doJSON(t, h, http.MethodGet, "/api/admin/videos", alice.Token, nil, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = doJSON(t, h, http.MethodGet, "/api/admin/videos", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRevenueIsPrivateToItsOwner(t *testing.T) {
	h := newTestServer(t)

	alice := registerUser(t, h, "alice@example.com", "Alice")
	bob := registerUser(t, h, "bob@example.com", "Bob")

	rr := doJSON(t, h, http.MethodGet, "/api/revenue/"+alice.User.ID, bob.Token, nil, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// The owner gets the ledger plus its sum, even when both are empty.
	var revenue struct {
		Revenue      []model.Revenue `json:"revenue"`
		TotalRevenue *float64        `json:"totalRevenue"`
	}
	rr = doJSON(t, h, http.MethodGet, "/api/revenue/"+alice.User.ID, alice.Token, nil, &revenue)
	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, revenue.TotalRevenue)
	assert.Equal(t, 0.0, *revenue.TotalRevenue)
	assert.Empty(t, revenue.Revenue)
}

// Unknown /api paths 404; everything else falls through to the SPA shell.
func TestRoutingFallthrough(t *testing.T) {
	h := newTestServer(t)

	rr := doJSON(t, h, http.MethodGet, "/api/no-such-thing", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req := httptest.NewRequest(http.MethodGet, "/watch/some-client-route", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}
