// Package fs provides a filesystem-backed messaging.Queue built on viant/afs.
// Messages are JSON files moved between state directories (pending,
// processing, completed, failed, dlq), which makes the hand-off to an
// external orchestrator durable across process restarts and inspectable with
// plain file tooling.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/storage"
	"github.com/viant/approvals/service/messaging"
)

// MessageState represents the state of a message in the filesystem queue.
type MessageState string

const (
	// MessageStatePending indicates a message is waiting to be processed.
	MessageStatePending MessageState = "pending"

	// MessageStateProcessing indicates a message is being processed.
	MessageStateProcessing MessageState = "processing"

	// MessageStateCompleted indicates a message was successfully processed.
	MessageStateCompleted MessageState = "completed"

	// MessageStateFailed indicates a message failed processing.
	MessageStateFailed MessageState = "failed"
)

// Message implements messaging.Message for the filesystem queue.
type Message[T any] struct {
	ID        string       `json:"id"`
	Data      T            `json:"data"`
	State     MessageState `json:"state"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	Retries   int          `json:"retries"`

	queue     *Queue[T]
	processed bool
	mu        sync.Mutex
}

// T returns the message payload.
func (m *Message[T]) T() *T {
	return &m.Data
}

// Ack acknowledges that the message was processed successfully.
func (m *Message[T]) Ack() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateCompleted
	m.UpdatedAt = time.Now()
	return m.queue.completeMessage(context.Background(), m)
}

// Nack indicates that the message processing failed.
func (m *Message[T]) Nack(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.processed {
		return fmt.Errorf("message already processed")
	}
	m.processed = true
	m.State = MessageStateFailed
	if err != nil {
		m.Error = err.Error()
	}
	m.Retries++
	m.UpdatedAt = time.Now()
	return m.queue.failMessage(context.Background(), m)
}

// QueueConfig holds configuration for filesystem queue.
type QueueConfig struct {
	BasePath   string        // Base directory for queue files
	MaxRetries int           // Maximum number of retry attempts
	RetryDelay time.Duration // Delay between retries
}

// DefaultConfig returns a default queue configuration.
func DefaultConfig() QueueConfig {
	return QueueConfig{
		BasePath:   "/tmp/approvals/queue",
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// Queue implements a filesystem-based messaging.Queue.
type Queue[T any] struct {
	fs            afs.Service
	config        QueueConfig
	pendingDir    string
	processingDir string
	completedDir  string
	failedDir     string
	dlqDir        string
	mu            sync.Mutex
}

// NewQueue creates a new filesystem-based queue and ensures its state
// directories exist.
func NewQueue[T any](fs afs.Service, config QueueConfig) (*Queue[T], error) {
	if config.BasePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	q := &Queue[T]{
		fs:            fs,
		config:        config,
		pendingDir:    path.Join(config.BasePath, "pending"),
		processingDir: path.Join(config.BasePath, "processing"),
		completedDir:  path.Join(config.BasePath, "completed"),
		failedDir:     path.Join(config.BasePath, "failed"),
		dlqDir:        path.Join(config.BasePath, "dlq"),
	}

	ctx := context.Background()
	for _, dir := range []string{q.pendingDir, q.processingDir, q.completedDir, q.failedDir, q.dlqDir} {
		exists, _ := fs.Exists(ctx, dir)
		if !exists {
			if err := fs.Create(ctx, dir, file.DefaultDirOsMode, true); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}
		}
	}
	return q, nil
}

// Publish adds a new message to the queue.
func (q *Queue[T]) Publish(ctx context.Context, t *T) error {
	message := &Message[T]{
		ID:        uuid.New().String(),
		Data:      *t,
		State:     MessageStatePending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		queue:     q,
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	filePath := path.Join(q.pendingDir, q.generateFilename(message.ID))
	return q.uploadMessage(ctx, filePath, data)
}

// Consume retrieves a single message from the queue; failed messages
// eligible for retry take precedence over fresh pending ones. It returns
// (nil, nil) when the queue is empty.
func (q *Queue[T]) Consume(ctx context.Context) (messaging.Message[T], error) {
	retryMessage, err := q.checkFailedMessages(ctx)
	if err != nil {
		return nil, err
	}
	if retryMessage != nil {
		return retryMessage, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	objects, err := q.fs.List(ctx, q.pendingDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending messages: %w", err)
	}
	pendingFiles := filterJSONFiles(objects)
	if len(pendingFiles) == 0 {
		return nil, nil
	}

	// Process the oldest message (by filename prefix).
	obj := pendingFiles[0]
	message, err := q.readMessageFromURL(ctx, obj.URL())
	if err != nil {
		destURL := path.Join(q.failedDir, fmt.Sprintf("invalid-%s", obj.Name()))
		_ = q.fs.Move(ctx, obj.URL(), destURL)
		return nil, err
	}
	message.State = MessageStateProcessing
	message.UpdatedAt = time.Now()
	message.queue = q

	if err := q.transition(ctx, message, obj, q.processingDir); err != nil {
		return nil, err
	}
	return message, nil
}

// checkFailedMessages looks for failed messages eligible for retry; those
// past the retry limit are moved to the DLQ.
func (q *Queue[T]) checkFailedMessages(ctx context.Context) (*Message[T], error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	objects, err := q.fs.List(ctx, q.failedDir, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list failed messages: %w", err)
	}
	failedFiles := filterJSONFiles(objects)
	if len(failedFiles) == 0 {
		return nil, nil
	}

	obj := failedFiles[0]
	message, err := q.readMessageFromURL(ctx, obj.URL())
	if err != nil {
		destURL := path.Join(q.dlqDir, fmt.Sprintf("invalid-%s", obj.Name()))
		_ = q.fs.Move(ctx, obj.URL(), destURL)
		return nil, err
	}

	if message.Retries > q.config.MaxRetries {
		destURL := path.Join(q.dlqDir, obj.Name())
		if err := q.fs.Move(ctx, obj.URL(), destURL); err != nil {
			return nil, fmt.Errorf("failed to move message to DLQ: %w", err)
		}
		return nil, nil
	}

	message.State = MessageStateProcessing
	message.UpdatedAt = time.Now()
	message.queue = q

	if err := q.transition(ctx, message, obj, q.processingDir); err != nil {
		return nil, err
	}
	return message, nil
}

// transition uploads the updated message into destDir first and only then
// deletes the source file, so a crash in between duplicates rather than
// loses a message.
func (q *Queue[T]) transition(ctx context.Context, message *Message[T], obj storage.Object, destDir string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal updated message: %w", err)
	}
	destPath := path.Join(destDir, obj.Name())
	if err := q.uploadMessage(ctx, destPath, data); err != nil {
		return fmt.Errorf("failed to move message to %s: %w", destDir, err)
	}
	if err := q.fs.Delete(ctx, obj.URL()); err != nil {
		return fmt.Errorf("failed to delete message from source directory: %w", err)
	}
	return nil
}

// completeMessage moves a message from processing to completed.
func (q *Queue[T]) completeMessage(ctx context.Context, m *Message[T]) error {
	return q.moveFromProcessing(ctx, m, q.completedDir)
}

// failMessage moves a message from processing to failed or straight to DLQ
// once retries are exhausted.
func (q *Queue[T]) failMessage(ctx context.Context, m *Message[T]) error {
	destDir := q.failedDir
	if m.Retries > q.config.MaxRetries {
		destDir = q.dlqDir
	}
	return q.moveFromProcessing(ctx, m, destDir)
}

func (q *Queue[T]) moveFromProcessing(ctx context.Context, m *Message[T], destDir string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	// The timestamp prefix was assigned at publish time, so locate the
	// processing file by the message id suffix rather than regenerating it.
	objects, err := q.fs.List(ctx, q.processingDir)
	if err != nil {
		return fmt.Errorf("failed to list processing messages: %w", err)
	}
	var source storage.Object
	for _, obj := range filterJSONFiles(objects) {
		if strings.HasSuffix(obj.Name(), m.ID+".json") {
			source = obj
			break
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	filename := q.generateFilename(m.ID)
	if source != nil {
		filename = source.Name()
	}
	if err := q.uploadMessage(ctx, path.Join(destDir, filename), data); err != nil {
		return err
	}
	if source != nil {
		return q.fs.Delete(ctx, source.URL())
	}
	return nil
}

// Size returns the number of pending messages.
func (q *Queue[T]) Size() int {
	objects, err := q.fs.List(context.Background(), q.pendingDir)
	if err != nil {
		return 0
	}
	return len(filterJSONFiles(objects))
}

func (q *Queue[T]) uploadMessage(ctx context.Context, filePath string, data []byte) error {
	if err := q.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write message %s: %w", filePath, err)
	}
	return nil
}

func (q *Queue[T]) readMessageFromURL(ctx context.Context, URL string) (*Message[T], error) {
	reader, err := q.fs.OpenURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open message %s: %w", URL, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read message %s: %w", URL, err)
	}
	message := &Message[T]{}
	if err := json.Unmarshal(data, message); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message %s: %w", URL, err)
	}
	return message, nil
}

// generateFilename keeps messages ordered by creation time when listed.
func (q *Queue[T]) generateFilename(id string) string {
	return fmt.Sprintf("%d-%s.json", time.Now().UnixNano(), id)
}

func filterJSONFiles(objects []storage.Object) []storage.Object {
	var files []storage.Object
	for _, obj := range objects {
		if !obj.IsDir() && strings.HasSuffix(obj.Name(), ".json") {
			files = append(files, obj)
		}
	}
	return files
}
