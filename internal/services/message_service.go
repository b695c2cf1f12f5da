package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"time"

	"mapshare/internal/auth"
	"mapshare/internal/db"
	"mapshare/internal/events"
	"mapshare/internal/models"
	"mapshare/internal/money"
	"mapshare/internal/realtime"
	"mapshare/internal/storage"
	"mapshare/internal/store"
	"mapshare/internal/validator"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type FileStorage interface {
	Upload(ctx context.Context, bucket storage.Bucket, name, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, bucket storage.Bucket, path string) error
	PublicURL(bucket storage.Bucket, path string) string
}

type MessageStore interface {
	InsertMany(ctx context.Context, tx store.Execer, messages []models.Message) error
	GetByID(ctx context.Context, id string) (models.Message, error)
	ListByPaymentRequest(ctx context.Context, q store.Selecter, requestID string) ([]models.Message, error)
	ListInbox(ctx context.Context, userID string) ([]models.Message, error)
	ListSent(ctx context.Context, userID string) ([]models.Message, error)
	MarkRead(ctx context.Context, id, receiverID string) (int64, error)
	SetFeedback(ctx context.Context, id, receiverID, feedback string) (int64, error)
}

type PaymentRequestStore interface {
	Claim(ctx context.Context, tx store.Execer, input models.PaymentRequest) (bool, error)
	Get(ctx context.Context, tx store.Getter, id string) (models.PaymentRequest, error)
}

type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

type SendRequest struct {
	Sender          auth.Session
	RecipientIDs    []string
	File            Attachment
	ClientRequestID string
}

type SendResult struct {
	PaymentRequestID string           `json:"payment_request_id"`
	TransactionID    string           `json:"transaction_id"`
	Messages         []models.Message `json:"messages"`
	Cost             int64            `json:"cost"`
	Balance          int64            `json:"balance"`
	Replayed         bool             `json:"replayed"`
}

// MessageView is a message with its attachment URL resolved.
type MessageView struct {
	models.Message
	FileURL string `json:"file_url"`
}

var errReplay = errors.New("payment request already processed")

type MessageService struct {
	txRunner  db.TxRunner
	wallet    *WalletService
	messages  MessageStore
	requests  PaymentRequestStore
	files     FileStorage
	feed      realtime.Publisher
	publisher events.Publisher
	logger    *slog.Logger
	fee       int64
	maxBytes  int64
	now       func() time.Time
}

func NewMessageService(
	txRunner db.TxRunner,
	wallet *WalletService,
	messages MessageStore,
	requests PaymentRequestStore,
	files FileStorage,
	feed realtime.Publisher,
	publisher events.Publisher,
	logger *slog.Logger,
	fee string,
	maxBytes int64,
) (*MessageService, error) {
	unit, err := money.ParsePositiveMinor(fee)
	if err != nil {
		return nil, fmt.Errorf("message fee %q: %w", fee, err)
	}
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &MessageService{
		txRunner:  txRunner,
		wallet:    wallet,
		messages:  messages,
		requests:  requests,
		files:     files,
		feed:      feed,
		publisher: publisher,
		logger:    logger,
		fee:       unit,
		maxBytes:  maxBytes,
		now:       time.Now,
	}, nil
}

// Fee is the cost per recipient in minor units.
func (s *MessageService) Fee() int64 {
	return s.fee
}

func (s *MessageService) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if err := validator.ValidateAttachment(req.File.ContentType, int64(len(req.File.Data)), s.maxBytes); err != nil {
		return SendResult{}, err
	}
	recipients := uniqueRecipients(req.RecipientIDs, req.Sender.UserID)
	if len(recipients) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	for _, recipient := range recipients {
		if _, err := uuid.Parse(recipient); err != nil {
			return SendResult{}, ErrInvalidRecipient
		}
	}
	requestID := req.ClientRequestID
	if requestID == "" {
		requestID = uuid.NewString()
	} else if result, ok, err := s.replay(ctx, req.Sender.UserID, requestID); err != nil || ok {
		return result, err
	}

	cost := int64(len(recipients)) * s.fee
	balance, err := s.wallet.Balance(ctx, req.Sender.UserID)
	if err != nil {
		return SendResult{}, fmt.Errorf("read balance: %w", err)
	}
	if balance < cost {
		return SendResult{}, ErrInsufficientFunds
	}

	name := uuid.NewString() + path.Ext(req.File.Name)
	filePath, err := s.files.Upload(ctx, storage.MessageAttachments, name, req.File.ContentType, req.File.Data)
	if err != nil {
		return SendResult{}, fmt.Errorf("upload attachment: %w", err)
	}

	var entry LedgerEntry
	rows := make([]models.Message, 0, len(recipients))
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows = rows[:0]
		var err error
		entry, err = s.wallet.apply(ctx, tx, req.Sender.UserID, -cost, fmt.Sprintf("Paid message to %d recipient(s)", len(recipients)))
		if err != nil {
			return err
		}
		claimed, err := s.requests.Claim(ctx, tx, models.PaymentRequest{
			ID:            requestID,
			UserID:        req.Sender.UserID,
			TransactionID: entry.TransactionID,
		})
		if err != nil {
			return fmt.Errorf("claim payment request: %w", err)
		}
		if !claimed {
			return errReplay
		}
		for _, recipient := range recipients {
			rows = append(rows, models.Message{
				ID:               uuid.NewString(),
				SenderID:         req.Sender.UserID,
				ReceiverID:       recipient,
				FilePath:         filePath,
				FileType:         req.File.ContentType,
				PaymentRequestID: requestID,
			})
		}
		return s.messages.InsertMany(ctx, tx, rows)
	})
	if err != nil {
		s.discard(filePath)
		if errors.Is(err, errReplay) {
			result, ok, replayErr := s.replay(ctx, req.Sender.UserID, requestID)
			if replayErr != nil {
				return SendResult{}, replayErr
			}
			if ok {
				return result, nil
			}
			return SendResult{}, ErrDuplicateRequest
		}
		if db.IsForeignKeyViolation(err) {
			return SendResult{}, ErrInvalidRecipient
		}
		return SendResult{}, err
	}

	s.afterSend(ctx, req.Sender.UserID, requestID, entry, rows, cost)
	return SendResult{
		PaymentRequestID: requestID,
		TransactionID:    entry.TransactionID,
		Messages:         rows,
		Cost:             cost,
		Balance:          entry.Balance,
	}, nil
}

// replay returns the stored outcome of an already processed request id.
func (s *MessageService) replay(ctx context.Context, senderID, requestID string) (SendResult, bool, error) {
	pr, err := s.requests.Get(ctx, nil, requestID)
	if store.IsNotFound(err) {
		return SendResult{}, false, nil
	}
	if err != nil {
		return SendResult{}, false, fmt.Errorf("load payment request: %w", err)
	}
	if pr.UserID != senderID {
		return SendResult{}, false, ErrDuplicateRequest
	}
	rows, err := s.messages.ListByPaymentRequest(ctx, nil, requestID)
	if err != nil {
		return SendResult{}, false, fmt.Errorf("load messages: %w", err)
	}
	balance, err := s.wallet.Balance(ctx, senderID)
	if err != nil {
		return SendResult{}, false, fmt.Errorf("read balance: %w", err)
	}
	return SendResult{
		PaymentRequestID: pr.ID,
		TransactionID:    pr.TransactionID,
		Messages:         rows,
		Cost:             int64(len(rows)) * s.fee,
		Balance:          balance,
		Replayed:         true,
	}, true, nil
}

func (s *MessageService) discard(filePath string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.files.Delete(ctx, storage.MessageAttachments, filePath); err != nil {
		s.logger.Warn("failed to delete orphaned attachment", "path", filePath, "error", err)
	}
}

func (s *MessageService) afterSend(ctx context.Context, senderID, requestID string, entry LedgerEntry, rows []models.Message, cost int64) {
	now := s.now().UTC()
	recipients := make([]string, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, m := range rows {
		recipients = append(recipients, m.ReceiverID)
		ids = append(ids, m.ID)
		s.feed.Publish(realtime.ChangeEvent{Table: realtime.TableMessages, Op: realtime.OpInsert, UserID: m.ReceiverID, At: now})
	}
	s.feed.Publish(realtime.ChangeEvent{Table: realtime.TableMessages, Op: realtime.OpInsert, UserID: senderID, At: now})
	s.wallet.announce(senderID, entry.Balance)

	fileType := ""
	if len(rows) > 0 {
		fileType = rows[0].FileType
	}
	err := s.publisher.PublishMessageSent(ctx, events.MessageSent{
		PaymentRequestID: requestID,
		TransactionID:    entry.TransactionID,
		SenderID:         senderID,
		RecipientIDs:     recipients,
		MessageIDs:       ids,
		FileType:         fileType,
		CostMinor:        cost,
		SentAt:           now,
	})
	if err != nil {
		s.logger.Error("failed to publish message.sent", "payment_request_id", requestID, "error", err)
	}
}

func (s *MessageService) Inbox(ctx context.Context, userID string) ([]MessageView, error) {
	rows, err := s.messages.ListInbox(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(rows), nil
}

func (s *MessageService) Sent(ctx context.Context, userID string) ([]MessageView, error) {
	rows, err := s.messages.ListSent(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.views(rows), nil
}

// Open marks the message read when the receiver opens it. The sender may
// view it without changing its state.
func (s *MessageService) Open(ctx context.Context, userID, messageID string) (MessageView, error) {
	msg, err := s.messages.GetByID(ctx, messageID)
	if store.IsNotFound(err) {
		return MessageView{}, ErrNotFound
	}
	if err != nil {
		return MessageView{}, err
	}
	switch userID {
	case msg.ReceiverID:
		if !msg.Read {
			if _, err := s.messages.MarkRead(ctx, msg.ID, userID); err != nil {
				return MessageView{}, fmt.Errorf("mark read: %w", err)
			}
			msg.Read = true
			s.feed.Publish(realtime.ChangeEvent{Table: realtime.TableMessages, Op: realtime.OpUpdate, UserID: msg.SenderID})
		}
	case msg.SenderID:
	default:
		return MessageView{}, ErrForbidden
	}
	return s.view(msg), nil
}

func (s *MessageService) Rate(ctx context.Context, userID, messageID, feedback string) (MessageView, error) {
	if feedback != models.FeedbackInterested && feedback != models.FeedbackNotInterested {
		return MessageView{}, ErrInvalidFeedback
	}
	msg, err := s.messages.GetByID(ctx, messageID)
	if store.IsNotFound(err) {
		return MessageView{}, ErrNotFound
	}
	if err != nil {
		return MessageView{}, err
	}
	if msg.ReceiverID != userID {
		return MessageView{}, ErrForbidden
	}
	if msg.Feedback != nil {
		return MessageView{}, ErrFeedbackRecorded
	}
	updated, err := s.messages.SetFeedback(ctx, msg.ID, userID, feedback)
	if err != nil {
		return MessageView{}, fmt.Errorf("set feedback: %w", err)
	}
	if updated == 0 {
		return MessageView{}, ErrFeedbackRecorded
	}
	msg.Feedback = &feedback
	msg.Read = true
	s.feed.Publish(realtime.ChangeEvent{Table: realtime.TableMessages, Op: realtime.OpUpdate, UserID: msg.SenderID})
	return s.view(msg), nil
}

func (s *MessageService) views(rows []models.Message) []MessageView {
	out := make([]MessageView, 0, len(rows))
	for _, m := range rows {
		out = append(out, s.view(m))
	}
	return out
}

func (s *MessageService) view(m models.Message) MessageView {
	return MessageView{Message: m, FileURL: s.files.PublicURL(storage.MessageAttachments, m.FilePath)}
}

// uniqueRecipients keeps first-seen order and drops blanks and the sender.
func uniqueRecipients(ids []string, senderID string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == senderID {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
