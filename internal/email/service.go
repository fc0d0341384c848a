package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"time"

	"github.com/Hohokz/sting-hive-muay-thai-api/internal/logger"
	"github.com/Hohokz/sting-hive-muay-thai-api/internal/metrics"

	"github.com/redis/go-redis/v9"
)

const (
	queueKey  = "emails"
	failedKey = "emails:failed"

	maxTries = 3
)

// Message is one queued email. Type tags the template for metrics.
type Message struct {
	Type    string    `json:"type"`
	To      string    `json:"to"`
	Name    string    `json:"name"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Enqueuer is what the booking dispatcher depends on.
type Enqueuer interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Service pushes messages onto a Redis list and drains it in a background
// worker, so SMTP latency never sits inside a request.
type Service struct {
	redis    *redis.Client
	from     string
	fromName string
	smtpHost string
	smtpPort string
	smtpUser string
	smtpPass string
}

func New(fromEmail, fromName, smtpHost, smtpPort, smtpUser, smtpPass, redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
		from:     fromEmail,
		fromName: fromName,
		smtpHost: smtpHost,
		smtpPort: smtpPort,
		smtpUser: smtpUser,
		smtpPass: smtpPass,
	}
}

func (s *Service) Enqueue(ctx context.Context, msg Message) error {
	if msg.Created.IsZero() {
		msg.Created = time.Now()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		logger.Errorf("Failed to marshal email message: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, data).Err(); err != nil {
		logger.Errorf("Failed to queue email to %s: %v", msg.To, err)
		metrics.RecordEmail(msg.Type, "queue_error")
		return err
	}

	logger.Infof("Email queued: %s to %s", msg.Subject, msg.To)
	metrics.RecordEmail(msg.Type, "queued")
	return nil
}

// Start drains the queue until ctx is canceled. Run it in its own
// goroutine.
func (s *Service) Start(ctx context.Context) {
	logger.Info("Email worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Email worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var msg Message
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		logger.Errorf("Bad email data: %v", err)
		return
	}

	msg.Tries++
	logger.Infof("Sending email to %s (attempt %d)", msg.To, msg.Tries)
	if err := s.sendNow(msg); err != nil {
		logger.Errorf("Failed to send email to %s: %v", msg.To, err)

		if msg.Tries < maxTries {
			time.Sleep(5 * time.Second)
			data, _ := json.Marshal(msg)
			s.redis.LPush(context.Background(), queueKey, data)
			logger.Infof("Retrying email to %s (attempt %d)", msg.To, msg.Tries+1)
		} else {
			logger.Errorf("Email to %s failed after %d attempts", msg.To, maxTries)
			metrics.RecordEmail(msg.Type, "failed")
			s.saveFailed(msg, err)
		}
		return
	}

	logger.Infof("Email sent successfully to %s", msg.To)
	metrics.RecordEmail(msg.Type, "sent")
}

func (s *Service) sendNow(msg Message) error {
	message := fmt.Sprintf("From: %s <%s>\r\n", s.fromName, s.from)
	message += fmt.Sprintf("To: %s\r\n", msg.To)
	message += fmt.Sprintf("Subject: %s\r\n", msg.Subject)
	message += "\r\n" + msg.Body

	var auth smtp.Auth
	if s.smtpUser != "" && s.smtpPass != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPass, s.smtpHost)
	}

	addr := s.smtpHost + ":" + s.smtpPort
	return smtp.SendMail(addr, auth, s.from, []string{msg.To}, []byte(message))
}

func (s *Service) saveFailed(msg Message, err error) {
	failed := map[string]interface{}{
		"message": msg,
		"error":   err.Error(),
		"time":    time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedKey, data)
	logger.Errorf("Email moved to failed queue: %s", msg.To)
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}
