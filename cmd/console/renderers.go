package main

import (
	"fmt"
	"time"

	"github.com/lnflash/flash-admin-console/internal/controller"
	"github.com/lnflash/flash-admin-console/internal/domain"
)

const timestampFormat = "2006-01-02 15:04"

// upgradeRenderer presents upgrade requests: the business section only
// appears for business-level applications, and review details only once a
// reviewer has acted.
func upgradeRenderer() controller.Renderer[domain.UpgradeRequest] {
	return controller.Renderer[domain.UpgradeRequest]{
		Columns: []controller.Column[domain.UpgradeRequest]{
			{Header: "ID", Cell: func(r domain.UpgradeRequest) string { return r.RecordID() }},
			{Header: "Username", Cell: func(r domain.UpgradeRequest) string { return r.Username }},
			{Header: "Full Name", Cell: func(r domain.UpgradeRequest) string { return r.FullName }},
			{Header: "Level", Cell: func(r domain.UpgradeRequest) string {
				return r.CurrentLevel + "→" + r.RequestedLevel
			}},
			{Header: "Status", Cell: func(r domain.UpgradeRequest) string { return r.Status }},
			{Header: "Submitted", Cell: func(r domain.UpgradeRequest) string {
				return r.CreatedAt.Format("2006-01-02")
			}},
		},
		Sections: []controller.Section[domain.UpgradeRequest]{
			{
				Title: "Applicant",
				Lines: func(r domain.UpgradeRequest) []string {
					return []string{
						"Username: " + r.Username,
						"Full name: " + r.FullName,
						"Phone: " + r.PhoneNumber,
						"Account: " + r.AccountID,
						fmt.Sprintf("Level: %s → %s", r.CurrentLevel, r.RequestedLevel),
						"Submitted: " + r.CreatedAt.Format(timestampFormat),
					}
				},
			},
			{
				Title:   "Business Information",
				Present: domain.UpgradeRequest.HasBusinessInfo,
				Lines: func(r domain.UpgradeRequest) []string {
					return []string{
						"Name: " + r.BusinessName,
						"Address: " + r.BusinessAddress,
					}
				},
			},
			{
				Title: "Review",
				Present: func(r domain.UpgradeRequest) bool {
					return r.Status != domain.UpgradeStatusPending
				},
				Lines: func(r domain.UpgradeRequest) []string {
					lines := []string{
						"Status: " + r.Status,
						"Reviewed by: " + r.ReviewedBy,
					}
					if r.ReviewedAt != nil {
						lines = append(lines, "Reviewed at: "+r.ReviewedAt.Format(timestampFormat))
					}
					if r.RejectionReason != "" {
						lines = append(lines, "Reason: "+r.RejectionReason)
					}
					return lines
				},
			},
		},
		Placeholder: "No upgrade requests found",
	}
}

// cashoutRenderer presents cashout requests with payout and bank details.
func cashoutRenderer() controller.Renderer[domain.CashoutRequest] {
	return controller.Renderer[domain.CashoutRequest]{
		Columns: []controller.Column[domain.CashoutRequest]{
			{Header: "ID", Cell: func(r domain.CashoutRequest) string { return r.RecordID() }},
			{Header: "Order", Cell: func(r domain.CashoutRequest) string { return r.OrderID }},
			{Header: "Username", Cell: func(r domain.CashoutRequest) string { return r.Username }},
			{Header: "Payout", Cell: func(r domain.CashoutRequest) string {
				return fmt.Sprintf("%.2f %s", r.ReceiveAmount, r.Currency)
			}},
			{Header: "Status", Cell: func(r domain.CashoutRequest) string {
				return r.EffectiveStatus(time.Now().UTC())
			}},
			{Header: "Expires", Cell: func(r domain.CashoutRequest) string {
				return r.ExpiresAt.Format("2006-01-02")
			}},
		},
		Sections: []controller.Section[domain.CashoutRequest]{
			{
				Title: "Requester",
				Lines: func(r domain.CashoutRequest) []string {
					return []string{
						"Username: " + r.Username,
						"Full name: " + r.FullName,
						"Phone: " + r.PhoneNumber,
						"Email: " + r.Email,
					}
				},
			},
			{
				Title: "Payout",
				Lines: func(r domain.CashoutRequest) []string {
					return []string{
						"Order: " + r.OrderID,
						fmt.Sprintf("Sending: %.2f %s", r.SendAmount, r.SendCurrency),
						fmt.Sprintf("Receiving: %.2f %s", r.ReceiveAmount, r.Currency),
						fmt.Sprintf("Rate: %.4f  Fee: %.2f", r.ExchangeRate, r.Fee),
						"Expires: " + r.ExpiresAt.Format(timestampFormat),
					}
				},
			},
			{
				Title: "Bank Account",
				Present: func(r domain.CashoutRequest) bool {
					return r.BankName != ""
				},
				Lines: func(r domain.CashoutRequest) []string {
					return []string{
						"Bank: " + r.BankName,
						"Branch: " + r.BankBranch,
						"Account: " + r.AccountNumber + " (" + r.AccountType + ")",
					}
				},
			},
			{
				Title:   "Business Information",
				Present: domain.CashoutRequest.HasBusinessInfo,
				Lines: func(r domain.CashoutRequest) []string {
					return []string{
						"Name: " + r.BusinessName,
						"Address: " + r.BusinessAddress,
					}
				},
			},
			{
				Title: "Confirmation",
				Present: func(r domain.CashoutRequest) bool {
					return r.Status == domain.CashoutStatusCompleted
				},
				Lines: func(r domain.CashoutRequest) []string {
					lines := []string{"Confirmed by: " + r.ConfirmedBy}
					if r.ConfirmedAt != nil {
						lines = append(lines, "Confirmed at: "+r.ConfirmedAt.Format(timestampFormat))
					}
					return lines
				},
			},
		},
		Placeholder: "No cashout requests found",
	}
}
