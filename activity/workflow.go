package activity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/utkarsh5026/seqpar/internal/future"
	"github.com/utkarsh5026/seqpar/task"
	"go.uber.org/zap"
)

// ErrNoPosts is returned when the user has nothing to read comments on.
var ErrNoPosts = errors.New("user has no posts")

// Step names, in execution order.
const (
	StepFetchUser     = "fetch user"
	StepFetchPosts    = "fetch posts"
	StepFetchComments = "fetch comments"
	StepSaveActivity  = "save activity"
	StepNotify        = "notify user"
)

// Steps lists every step in the order Workflow.Run executes them.
var Steps = []string{StepFetchUser, StepFetchPosts, StepFetchComments, StepSaveActivity, StepNotify}

type Post struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

type Comment struct {
	ID   string `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
}

type ActivityLog struct {
	Activity  string    `json:"activity" yaml:"activity"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

type Notification struct {
	Sent      bool      `json:"sent" yaml:"sent"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Summary is everything the workflow gathered.
type Summary struct {
	User         User          `json:"user" yaml:"user"`
	LatestPost   Post          `json:"latest_post" yaml:"latest_post"`
	Comments     []Comment     `json:"comments" yaml:"comments"`
	Activity     ActivityLog   `json:"activity" yaml:"activity"`
	Notification Notification  `json:"notification" yaml:"notification"`
	Elapsed      time.Duration `json:"elapsed" yaml:"elapsed"`
}

// Backend is the service each workflow step calls into.
type Backend interface {
	GetUser(ctx context.Context, userID int) (User, error)
	GetPosts(ctx context.Context, userID int) ([]Post, error)
	GetComments(ctx context.Context, postID string) ([]Comment, error)
	SaveActivity(ctx context.Context, userID int, activity string) (ActivityLog, error)
	Notify(ctx context.Context, userID int, message string) (Notification, error)
}

// StepError names the step that broke the chain.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Workflow runs the read-comments-and-notify chain for one user.
type Workflow struct {
	backend Backend
	log     *zap.Logger
}

// NewWorkflow creates a workflow over backend. A nil log discards notices.
func NewWorkflow(backend Backend, log *zap.Logger) *Workflow {
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{backend: backend, log: log}
}

// Run executes every step in order, feeding each step the output of the
// previous ones. The first failing step aborts the chain.
func (w *Workflow) Run(ctx context.Context, userID int) (Summary, error) {
	start := time.Now()

	user, err := w.backend.GetUser(ctx, userID)
	if err != nil {
		return Summary{}, w.fail(StepFetchUser, err)
	}
	w.log.Info("User fetched", zap.Int("user_id", user.ID), zap.String("name", user.Name))

	posts, err := w.backend.GetPosts(ctx, user.ID)
	if err != nil {
		return Summary{}, w.fail(StepFetchPosts, err)
	}
	if len(posts) == 0 {
		return Summary{}, w.fail(StepFetchPosts, ErrNoPosts)
	}
	w.log.Info("Posts fetched", zap.Int("count", len(posts)))
	latest := posts[0]

	comments, err := w.backend.GetComments(ctx, latest.ID)
	if err != nil {
		return Summary{}, w.fail(StepFetchComments, err)
	}
	w.log.Info("Comments fetched", zap.String("post_id", latest.ID), zap.Int("count", len(comments)))

	activityLog, err := w.backend.SaveActivity(ctx, user.ID, "read_comments")
	if err != nil {
		return Summary{}, w.fail(StepSaveActivity, err)
	}
	w.log.Info("Activity saved", zap.Time("timestamp", activityLog.Timestamp))

	notification, err := w.backend.Notify(ctx, user.ID, "New comments on your post")
	if err != nil {
		return Summary{}, w.fail(StepNotify, err)
	}

	summary := Summary{
		User:         user,
		LatestPost:   latest,
		Comments:     comments,
		Activity:     activityLog,
		Notification: notification,
		Elapsed:      time.Since(start),
	}
	w.log.Info("Process completed successfully",
		zap.String("user", user.Name),
		zap.String("latest_post", latest.Title),
		zap.Int("comments", len(comments)),
		zap.Bool("notification_sent", notification.Sent),
		zap.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}

// RunAsync starts Run on its own goroutine.
func (w *Workflow) RunAsync(ctx context.Context, userID int) *future.Future[Summary] {
	return future.Go(func() (Summary, error) {
		return w.Run(ctx, userID)
	})
}

func (w *Workflow) fail(step string, err error) error {
	w.log.Error("Workflow step failed", zap.String("step", step), zap.Error(err))
	return &StepError{Step: step, Err: err}
}

// MockBackend serves canned data, waiting latencyMs per call.
type MockBackend struct {
	dir       *Directory
	sim       *task.Simulator
	latencyMs int64
	now       func() time.Time
}

// NewMockBackend creates a backend whose user lookups go through dir.
func NewMockBackend(dir *Directory, sim *task.Simulator, latencyMs int64) *MockBackend {
	if sim == nil {
		sim = task.NewSimulator()
	}
	return &MockBackend{dir: dir, sim: sim, latencyMs: latencyMs, now: time.Now}
}

func (b *MockBackend) wait(ctx context.Context, id string) error {
	_, err := b.sim.Simulate(ctx, id, b.latencyMs)
	return err
}

func (b *MockBackend) GetUser(ctx context.Context, userID int) (User, error) {
	return b.dir.FetchUser(ctx, userID)
}

func (b *MockBackend) GetPosts(ctx context.Context, userID int) ([]Post, error) {
	if err := b.wait(ctx, fmt.Sprintf("posts-%d", userID)); err != nil {
		return nil, err
	}
	return []Post{{ID: "post1", Title: "First Post"}}, nil
}

func (b *MockBackend) GetComments(ctx context.Context, postID string) ([]Comment, error) {
	if err := b.wait(ctx, "comments-"+postID); err != nil {
		return nil, err
	}
	return []Comment{{ID: "comment1", Text: "Great post!"}}, nil
}

func (b *MockBackend) SaveActivity(ctx context.Context, userID int, activity string) (ActivityLog, error) {
	if err := b.wait(ctx, fmt.Sprintf("activity-%d", userID)); err != nil {
		return ActivityLog{}, err
	}
	return ActivityLog{Activity: activity, Timestamp: b.now()}, nil
}

func (b *MockBackend) Notify(ctx context.Context, userID int, message string) (Notification, error) {
	if err := b.wait(ctx, fmt.Sprintf("notify-%d", userID)); err != nil {
		return Notification{}, err
	}
	return Notification{Sent: true, Timestamp: b.now()}, nil
}
