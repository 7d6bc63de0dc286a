package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/socialfeed/internal/client/api"
	"github.com/dmitrijs2005/socialfeed/internal/client/config"
	"github.com/dmitrijs2005/socialfeed/internal/client/models"
	"github.com/dmitrijs2005/socialfeed/internal/client/notice"
	"github.com/dmitrijs2005/socialfeed/internal/client/push"
	"github.com/dmitrijs2005/socialfeed/internal/client/query"
	"github.com/dmitrijs2005/socialfeed/internal/client/services"
	"github.com/dmitrijs2005/socialfeed/internal/client/session"
	"github.com/dmitrijs2005/socialfeed/internal/client/storage"
	"github.com/dmitrijs2005/socialfeed/internal/cryptox"
	"github.com/dmitrijs2005/socialfeed/internal/logging"
)

// sessionView is what the CLI reads from the session.
type sessionView interface {
	User() *models.User
	IsAuthenticated() bool
	ExpiresAt() (time.Time, bool)
}

type pushStarter interface {
	Start(ctx context.Context) <-chan struct{}
}

type App struct {
	config *config.Config
	log    logging.Logger

	db      *sql.DB
	cache   *query.Client
	session sessionView
	restore func(ctx context.Context) error

	authService         services.AuthService
	postService         services.PostService
	commentService      services.CommentService
	notificationService services.NotificationService
	userService         services.UserService

	registrar pushStarter
	push      *push.Handler

	reader *bufio.Reader
	out    io.Writer

	// feedUser is the username filter of the last "feed" command, reused by "more".
	feedUser string

	mu            sync.Mutex
	notifications map[string]models.Notification
	seen          map[string]bool
	seeded        bool
}

// NewApp builds the full client stack from c: storage, HTTP client, query
// cache, session and feature services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	log := logging.NewTextLogger(os.Stderr, c.LogLevel)

	db, err := storage.OpenDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	key, err := cryptox.LoadOrCreateKey(c.KeyFile)
	if err != nil {
		db.Close()
		return nil, err
	}
	sealer, err := cryptox.NewSealer(key)
	if err != nil {
		db.Close()
		return nil, err
	}

	store := storage.NewStore(db, sealer)
	notifier := notice.NewWriterNotifier(os.Stdout)

	httpClient := api.NewClient(api.Config{
		BaseURL:  c.APIBaseURL,
		Timeout:  c.RequestTimeout,
		Platform: c.Platform,
	}, store, notifier, log.With("component", "api"))

	sess := session.New(store, log.With("component", "session"))

	opts := query.DefaultOptions()
	opts.StaleTime = c.StaleTime
	opts.CacheTime = c.CacheTime
	opts.Retry = c.QueryRetry
	opts.MutationRetry = c.MutationRetry
	opts.ShouldRetry = api.Retryable
	cache := query.NewClient(opts, log.With("component", "query"))

	httpClient.OnUnauthorized(func() {
		sess.Invalidate()
		cache.Clear()
	})

	notificationsAPI := api.NewNotificationsAPI(httpClient)

	var provider push.Provider = push.Unavailable{Reason: "no push token configured"}
	if c.PushToken != "" {
		provider = push.Static{Value: c.PushToken}
	}

	return &App{
		config:  c,
		log:     log,
		db:      db,
		cache:   cache,
		session: sess,
		restore: sess.Restore,

		authService:         services.NewAuthService(api.NewAuthAPI(httpClient), sess, cache, notifier, log),
		postService:         services.NewPostService(api.NewPostsAPI(httpClient, c.PostsPerPage), cache, notifier),
		commentService:      services.NewCommentService(api.NewCommentsAPI(httpClient), cache, notifier),
		notificationService: services.NewNotificationService(notificationsAPI, cache, notifier, c.NotificationsPerPage),
		userService:         services.NewUserService(api.NewUserAPI(httpClient), sess, cache, notifier, log),

		registrar: push.NewRegistrar(provider, notificationsAPI, log.With("component", "push")),
		push:      push.NewHandler(notifier, log),

		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,

		notifications: make(map[string]models.Notification),
		seen:          make(map[string]bool),
	}, nil
}

// Run restores the stored session and blocks in the REPL until the user
// exits. Background workers stop when Run returns.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.Close()

	a.cache.StartGC(ctx, a.config.GCInterval)

	if err := a.restore(ctx); err != nil {
		a.log.Error(ctx, "could not restore session", "error", err)
	}
	if a.isLoggedIn() {
		a.registrar.Start(ctx)
	}

	go a.StartNotificationWatcher(ctx, a.config.StaleTime)

	printlnFn("Welcome to social feed CLI (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn(context.Background(), "error closing database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.IsAuthenticated()
}

func (a *App) getStatus() string {
	u := a.session.User()
	if u == nil {
		return ""
	}
	return fmt.Sprintf(" (%s)", u.FullName())
}

// StartNotificationWatcher polls the notification list while a user is
// logged in and surfaces unread items that appeared since the last poll.
// The first poll only records what is already there.
func (a *App) StartNotificationWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.isLoggedIn() {
				a.resetSeen()
				continue
			}
			list, err := a.notificationService.List(ctx)
			if err != nil {
				a.log.Debug(ctx, "notification poll failed", "error", err)
				continue
			}
			for _, n := range a.unseen(list) {
				a.push.Received(ctx, messageOf(n))
			}

		case <-ctx.Done():
			return
		}
	}
}

// unseen records list and returns its unread items not reported before.
func (a *App) unseen(list []models.Notification) []models.Notification {
	a.mu.Lock()
	defer a.mu.Unlock()

	var fresh []models.Notification
	for _, n := range list {
		if a.seen[n.ID] {
			continue
		}
		a.seen[n.ID] = true
		if a.seeded && !n.IsRead {
			fresh = append(fresh, n)
		}
	}
	a.seeded = true
	return fresh
}

func (a *App) resetSeen() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen = make(map[string]bool)
	a.seeded = false
}

func messageOf(n models.Notification) push.Message {
	return push.Message{
		Title: notificationTitle(n.Type),
		Body:  n.Message,
		Data:  map[string]any{"type": n.Type, "postId": n.PostID},
	}
}
