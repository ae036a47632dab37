package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deskline/support-portal/internal/config"
	"github.com/deskline/support-portal/internal/domain"
	"github.com/deskline/support-portal/internal/events"
	"github.com/deskline/support-portal/internal/realtime"
	"github.com/deskline/support-portal/internal/repository"
	apperrors "github.com/deskline/support-portal/pkg/util/errorutil"
)

// Notification titles.
const (
	TitleTicketCreated  = "Novo Chamado Criado"
	TitleStatusUpdated  = "Status Atualizado"
	TitleAdminComment   = "Nova interação no chamado"
	titleUserCommentFmt = "Nova interação de %s"
)

// NotificationService owns user inboxes and relays e-mail alerts for
// domain events.
type NotificationService struct {
	notifications repository.NotificationRepository
	profiles      repository.ProfileRepository
	dispatcher    events.Dispatcher
	realtime      realtime.Publisher
	relay         AlertRelay
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	NotificationRepo repository.NotificationRepository
	ProfileRepo      repository.ProfileRepository
	Dispatcher       events.Dispatcher
	Realtime         realtime.Publisher
	// Relay overrides the HTTP relay built from Config.
	Relay  AlertRelay
	Logger *zap.Logger
	Config config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	relay := deps.Relay
	if relay == nil {
		relay = NewHTTPAlertRelay(deps.Config)
	}
	return &NotificationService{
		notifications: deps.NotificationRepo,
		profiles:      deps.ProfileRepo,
		dispatcher:    deps.Dispatcher,
		realtime:      deps.Realtime,
		relay:         relay,
		logger:        logger,
		cfg:           deps.Config,
	}
}

// List returns the user's inbox, newest first.
func (n *NotificationService) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	items, err := n.notifications.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return items, nil
}

// MarkRead marks one notification of the user read.
func (n *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound("notification", map[string]any{"id": id})
	}
	if err := n.notifications.MarkRead(ctx, userID, id); err != nil {
		return n.mapMissing(err, id)
	}
	n.publish(ctx, realtime.Change{Table: realtime.TableNotifications, Op: realtime.OpUpdate, RowID: id, UserID: userID})
	return nil
}

// MarkAllRead marks every notification of the user read.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	if err := n.notifications.MarkAllRead(ctx, userID); err != nil {
		return err
	}
	n.publish(ctx, realtime.Change{Table: realtime.TableNotifications, Op: realtime.OpUpdate, UserID: userID})
	return nil
}

// Delete removes one notification of the user.
func (n *NotificationService) Delete(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.NewNotFound("notification", map[string]any{"id": id})
	}
	if err := n.notifications.Delete(ctx, userID, id); err != nil {
		return n.mapMissing(err, id)
	}
	n.publish(ctx, realtime.Change{Table: realtime.TableNotifications, Op: realtime.OpDelete, RowID: id, UserID: userID})
	return nil
}

func (n *NotificationService) mapMissing(err error, id string) error {
	if apperrors.IsNotFound(err) {
		return apperrors.NewNotFound("notification", map[string]any{"id": id})
	}
	return err
}

// Notify writes one inbox item and announces it on the user's channel. A
// realtime failure is logged only; the inbox row is the notification.
func (n *NotificationService) Notify(ctx context.Context, userID, title, message string, ticketID *string) error {
	item := &domain.Notification{UserID: userID, Title: title, Message: message, TicketID: ticketID}
	if err := n.notifications.Create(ctx, item); err != nil {
		return fmt.Errorf("notify %s: %w", userID, err)
	}
	n.publish(ctx, realtime.Change{Table: realtime.TableNotifications, Op: realtime.OpInsert, RowID: item.ID, UserID: userID})
	return nil
}

// NotifyAdmins notifies every active admin except excludeID.
func (n *NotificationService) NotifyAdmins(ctx context.Context, excludeID, title, message string, ticketID *string) error {
	admins, err := n.profiles.ListAdmins(ctx)
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	var errs []error
	for _, admin := range admins {
		if admin.ID == excludeID {
			continue
		}
		if err := n.Notify(ctx, admin.ID, title, message, ticketID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (n *NotificationService) publish(ctx context.Context, change realtime.Change) {
	if n.realtime == nil {
		return
	}
	if err := n.realtime.Publish(ctx, change); err != nil {
		n.logger.Warn("realtime publish failed", zap.String("user_id", change.UserID), zap.Error(err))
	}
}

// RegisterHandlers subscribes the e-mail alerts to ticket events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("ticket created", zap.String("ticket_id", event.TicketID), zap.Int64("ticket_number", payload.Number))
	return n.sendAlert(ctx, event, Alert{
		To:      n.cfg.AlertRecipient,
		Subject: fmt.Sprintf("[Chamado #%d] %s", payload.Number, payload.Title),
		Text: fmt.Sprintf("%s abriu um novo chamado.\n\nAssunto: %s\nCategoria: %s\nPrioridade: %s\n\n%s",
			payload.Requester, payload.Title, payload.Category, payload.Priority, payload.Description),
	})
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("ticket status changed",
		zap.String("ticket_id", event.TicketID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))

	to := n.cfg.AlertRecipient
	if n.profiles != nil && payload.RequesterID != "" {
		if requester, err := n.profiles.GetByID(ctx, payload.RequesterID); err == nil && requester.Email != "" {
			to = requester.Email
		}
	}
	return n.sendAlert(ctx, event, Alert{
		To:      to,
		Subject: fmt.Sprintf("[Chamado #%d] Status alterado para %s", payload.Number, payload.NewStatus),
		Text: fmt.Sprintf("O chamado \"%s\" mudou de %s para %s por %s.",
			payload.Title, payload.OldStatus, payload.NewStatus, event.Actor.Name),
	})
}

func (n *NotificationService) sendAlert(ctx context.Context, event events.Event, alert Alert) error {
	alert.From = n.cfg.EmailFrom
	alert.Event = event
	if err := n.relay.Send(ctx, alert); err != nil {
		n.logger.Error("alert delivery failed", zap.String("ticket_id", event.TicketID), zap.String("event_type", string(event.Type)), zap.Error(err))
		return err
	}
	return nil
}

// Alert is an outbound e-mail alert. Webhook receivers get the event too.
type Alert struct {
	From    string       `json:"from"`
	To      string       `json:"to"`
	Subject string       `json:"subject"`
	Text    string       `json:"text"`
	Event   events.Event `json:"event"`
}

// AlertRelay delivers alerts.
type AlertRelay interface {
	Send(ctx context.Context, alert Alert) error
}

// HTTPAlertRelay posts alerts as JSON to a mail relay and a webhook through
// fiber's client. Endpoints left empty are skipped.
type HTTPAlertRelay struct {
	mailURL   string
	mailToken string
	webhook   string
	timeout   time.Duration
}

// NewHTTPAlertRelay builds a relay from configuration.
func NewHTTPAlertRelay(cfg config.NotificationConfig) *HTTPAlertRelay {
	return &HTTPAlertRelay{
		mailURL:   strings.TrimSpace(cfg.MailRelayURL),
		mailToken: cfg.MailRelayToken,
		webhook:   strings.TrimSpace(cfg.WebhookURL),
		timeout:   cfg.Timeout(),
	}
}

// Send delivers alert to every configured endpoint.
func (r *HTTPAlertRelay) Send(ctx context.Context, alert Alert) error {
	var errs []error
	if r.mailURL != "" && alert.To != "" {
		errs = append(errs, r.post(ctx, r.mailURL, r.mailToken, alert))
	}
	if r.webhook != "" {
		errs = append(errs, r.post(ctx, r.webhook, "", alert))
	}
	return errors.Join(errs...)
}

func (r *HTTPAlertRelay) post(ctx context.Context, url, token string, alert Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	agent := fiber.Post(url).JSON(alert).Timeout(r.timeout)
	if token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("post %s: %w", url, errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return fmt.Errorf("post %s: status %d: %s", url, code, strings.TrimSpace(string(body)))
	}
	return nil
}
