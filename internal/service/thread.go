package service

import (
	"context"
	"go-portfolio-blog/internal/auth"
	"go-portfolio-blog/internal/data"
	"sync"
)

// CommentStatus is the state of a single comment in a thread.
type CommentStatus string

// The comment states.
const (
	CommentShown         CommentStatus = ""
	CommentPendingDelete CommentStatus = "pending-delete"
	CommentError         CommentStatus = "error"
)

// ThreadComment is a comment as the thread shows it.
type ThreadComment struct {
	*data.Comment
	Status    CommentStatus
	Error     string
	CanDelete bool
}

// ThreadSnapshot is a copy of a thread's state.
type ThreadSnapshot struct {
	PostID    string
	Comments  []ThreadComment
	Draft     string
	Error     string
	LoadError string
	SignedIn  bool
}

type commentState struct {
	status CommentStatus
	err    string
}

// Thread holds the state of one comment thread view: the fetched comments,
// the draft being written and per-comment delete progress. Comments are only
// ever shown as fetched; nothing is inserted optimistically.
type Thread struct {
	mutex    sync.Mutex
	svc      *CommentService
	postID   string
	identity *auth.Identity
	comments []*data.Comment
	states   map[string]commentState
	draft    string
	err      string
	loadErr  string
}

// NewThread creates an empty thread for a post viewed by identity, which may be nil.
func NewThread(svc *CommentService, postID string, identity *auth.Identity) *Thread {
	return &Thread{
		svc:      svc,
		postID:   postID,
		identity: identity,
		comments: []*data.Comment{},
		states:   map[string]commentState{},
	}
}

// Refresh fetches the comments again. Delete states of comments that are gone are dropped.
func (t *Thread) Refresh(ctx context.Context) error {
	comments, err := t.svc.List(ctx, t.postID)

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if err != nil {
		t.loadErr = "Failed to load comments."
		return err
	}
	t.loadErr = ""
	t.comments = comments
	present := make(map[string]bool, len(comments))
	for _, c := range comments {
		present[c.ID] = true
	}
	for id := range t.states {
		if !present[id] {
			delete(t.states, id)
		}
	}
	return nil
}

// SetDraft replaces the draft text.
func (t *Thread) SetDraft(text string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.draft = text
}

// Submit adds the draft as a comment. On success the draft is cleared and
// the thread re-fetched; on failure the draft is kept and the error shown.
func (t *Thread) Submit(ctx context.Context) error {
	t.mutex.Lock()
	draft := t.draft
	t.mutex.Unlock()

	if _, err := t.svc.Add(ctx, t.identity, t.postID, draft); err != nil {
		t.mutex.Lock()
		t.err = Message(err)
		t.mutex.Unlock()
		return err
	}

	t.mutex.Lock()
	t.draft = ""
	t.err = ""
	t.mutex.Unlock()
	return t.Refresh(ctx)
}

// Delete removes a comment. The comment is pending while the store call runs;
// a failed delete keeps it with the error attached. Once the delete succeeded
// the pending state is cleared and a failing re-fetch only sets the load error.
func (t *Thread) Delete(ctx context.Context, commentID string) error {
	t.mutex.Lock()
	t.states[commentID] = commentState{status: CommentPendingDelete}
	t.mutex.Unlock()

	if err := t.svc.Delete(ctx, t.identity, commentID); err != nil {
		t.mutex.Lock()
		t.states[commentID] = commentState{status: CommentError, err: Message(err)}
		t.mutex.Unlock()
		return err
	}

	t.mutex.Lock()
	delete(t.states, commentID)
	t.mutex.Unlock()
	_ = t.Refresh(ctx)
	return nil
}

// Snapshot returns a copy of the current state.
func (t *Thread) Snapshot() ThreadSnapshot {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	snap := ThreadSnapshot{
		PostID:    t.postID,
		Comments:  make([]ThreadComment, 0, len(t.comments)),
		Draft:     t.draft,
		Error:     t.err,
		LoadError: t.loadErr,
		SignedIn:  t.identity != nil,
	}
	for _, c := range t.comments {
		st := t.states[c.ID]
		snap.Comments = append(snap.Comments, ThreadComment{
			Comment:   c,
			Status:    st.status,
			Error:     st.err,
			CanDelete: t.svc.CanDelete(t.identity, c),
		})
	}
	return snap
}
