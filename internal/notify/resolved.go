package notify

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/erazemk/back2u/internal/model"
	"github.com/erazemk/back2u/internal/store"
)

// SendClaimResolvedEmails notifies both sides of an approved claim: the
// original reporter and the claimant each get an email with the other
// party's contact details. Every failure here is logged and swallowed; the
// approval has already committed and must stand regardless of mail
// transport availability. A notification row is recorded only for messages
// the mailer accepted.
func SendClaimResolvedEmails(ctx context.Context, db *sql.DB, mailer Mailer, itemID, claimantID, adminID int64) {
	item, err := store.GetItem(ctx, db, itemID)
	if err != nil || item == nil {
		slog.Warn("skipping resolution emails, item lookup failed", "item_id", itemID, "error", err)
		return
	}

	reporter, err := store.GetUser(ctx, db, item.ReportedBy)
	if err != nil || reporter == nil {
		slog.Warn("skipping resolution emails, reporter lookup failed", "user_id", item.ReportedBy, "error", err)
		return
	}

	claimant, err := store.GetUser(ctx, db, claimantID)
	if err != nil || claimant == nil {
		slog.Warn("skipping resolution emails, claimant lookup failed", "user_id", claimantID, "error", err)
		return
	}

	reporterSubject := fmt.Sprintf("SUCCESS: Your Item '%s' Has Been RESOLVED!", item.Title)
	reporterBody := fmt.Sprintf(
		"Hello %s,\n\nGood news! Your item, '%s', has been verified by the Admin (ID: %d) and matched with the person who found it. "+
			"Please contact the claimant, %s, to arrange collection. Your contact details have been shared with them.",
		reporter.Name, item.Title, adminID, claimant.Name)

	if err := mailer.Send(reporter.Email, reporterSubject, reporterBody); err != nil {
		slog.Error("failed to email reporter", "user_id", reporter.ID, "error", err)
	} else if _, err := store.CreateNotification(ctx, db, reporter.ID,
		"Item successfully matched and resolved. Check your email for details!",
		model.NotificationTypeEmail, model.NotificationStatusSent); err != nil {
		slog.Error("failed to record reporter notification", "user_id", reporter.ID, "error", err)
	}

	claimantSubject := fmt.Sprintf("SUCCESS: Your Claim on '%s' Has Been APPROVED!", item.Title)
	claimantBody := fmt.Sprintf(
		"Hello %s,\n\nYour claim on '%s' has been successfully approved! "+
			"Please contact the original reporter, %s, to arrange the return of the item. Their email is %s.",
		claimant.Name, item.Title, reporter.Name, reporter.Email)

	if err := mailer.Send(claimant.Email, claimantSubject, claimantBody); err != nil {
		slog.Error("failed to email claimant", "user_id", claimant.ID, "error", err)
	} else if _, err := store.CreateNotification(ctx, db, claimant.ID,
		"Claim approved. Check your email for reporter's contact info.",
		model.NotificationTypeEmail, model.NotificationStatusSent); err != nil {
		slog.Error("failed to record claimant notification", "user_id", claimant.ID, "error", err)
	}
}
