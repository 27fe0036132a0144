package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilightpharmacy/booking-backend/internal/domain/entities"
	"github.com/twilightpharmacy/booking-backend/internal/domain/providers"
)

// EmailDeliverer sends a rendered email message
type EmailDeliverer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NotificationService renders and sends customer notifications
type NotificationService struct {
	sender EmailDeliverer
}

// Ensure NotificationService implements Notifier
var _ providers.Notifier = (*NotificationService)(nil)

// NewNotificationService creates a new notification service
func NewNotificationService(sender EmailDeliverer) *NotificationService {
	return &NotificationService{sender: sender}
}

// SendBookingConfirmation sends the booking confirmation email
func (n *NotificationService) SendBookingConfirmation(ctx context.Context, booking *entities.Booking, treatment *entities.Treatment, location *entities.Location) error {
	subject := fmt.Sprintf("Booking received: %s", treatment.Name)
	body := n.renderConfirmation(booking, treatment, location)
	return n.sender.Send(ctx, booking.CustomerEmail, subject, body)
}

func (n *NotificationService) renderConfirmation(booking *entities.Booking, treatment *entities.Treatment, location *entities.Location) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("<p>Hi %s,</p>", booking.CustomerName))
	b.WriteString("<p>Thank you for your booking. Here are the details:</p>")
	b.WriteString("<ul>")
	b.WriteString(fmt.Sprintf("<li><strong>Treatment:</strong> %s</li>", treatment.Name))
	b.WriteString(fmt.Sprintf("<li><strong>Location:</strong> %s, %s</li>", location.Name, location.Address))
	b.WriteString(fmt.Sprintf("<li><strong>When:</strong> %s</li>", formatWhen(booking)))
	b.WriteString(fmt.Sprintf("<li><strong>Reference:</strong> %s</li>", booking.ID))
	b.WriteString("</ul>")
	b.WriteString("<p>We will confirm your appointment shortly.</p>")
	b.WriteString("<p>Twilight Pharmacy</p>")

	return b.String()
}

func formatWhen(booking *entities.Booking) string {
	if booking.PreferredTime == entities.TimeTBD {
		return "To be arranged"
	}
	if booking.PreferredDate == nil {
		return booking.PreferredTime
	}
	return fmt.Sprintf("%s at %s", booking.PreferredDate.Format("Monday, 2 January 2006"), booking.PreferredTime)
}
