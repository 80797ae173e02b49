// Command console is the terminal review console for the admin back office.
// It drives the upgrade and cashout review queues against a running admin
// backend over its JSON API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lnflash/flash-admin-console/internal/client"
	"github.com/lnflash/flash-admin-console/internal/controller"
	"github.com/lnflash/flash-admin-console/internal/domain"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "base URL of the admin backend")
	actor := flag.String("actor", "", "administrator identity recorded on every review action")
	timeout := flag.Duration("timeout", 15*time.Second, "API request timeout")
	flag.Parse()

	if *actor == "" {
		fmt.Fprintln(os.Stderr, "the -actor flag is required")
		os.Exit(2)
	}

	apiClient := client.New(client.Config{
		BaseURL: *apiURL,
		Actor:   *actor,
		Timeout: *timeout,
	})

	upgrades, err := newUpgradeQueue(apiClient)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console setup failed: %v\n", err)
		os.Exit(1)
	}
	cashouts, err := newCashoutQueue(apiClient)
	if err != nil {
		fmt.Fprintf(os.Stderr, "console setup failed: %v\n", err)
		os.Exit(1)
	}

	root := newConsoleModel(
		[]string{"Upgrade Requests", "Cashout Requests"},
		[]tea.Model{upgrades, cashouts},
	)

	if _, err := tea.NewProgram(root, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "console failed: %v\n", err)
		os.Exit(1)
	}
}

// newUpgradeQueue builds the account-upgrade review tab.
func newUpgradeQueue(apiClient *client.Client) (tea.Model, error) {
	ctrl, err := controller.New(controller.Config[domain.UpgradeRequest]{
		Actions: []controller.Action[domain.UpgradeRequest]{
			{
				Name:          "approve",
				AllowedStatus: []string{domain.UpgradeStatusPending},
				Do: func(ctx context.Context, id, _ string) error {
					return apiClient.ApproveUpgradeRequest(ctx, id)
				},
			},
			{
				Name:          "reject",
				AllowedStatus: []string{domain.UpgradeStatusPending},
				ArgName:       "reason",
				Do: func(ctx context.Context, id, arg string) error {
					return apiClient.RejectUpgradeRequest(ctx, id, arg)
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return newQueueModel(queueConfig[domain.UpgradeRequest]{
		title:     "Upgrade Requests",
		ctrl:      ctrl,
		renderer:  upgradeRenderer(),
		colWidths: []int{6, 16, 20, 10, 10, 12},
		fetch: func(ctx context.Context, q controller.Query) (controller.PageResult[domain.UpgradeRequest], error) {
			res, err := apiClient.ListUpgradeRequests(ctx, q.Page, q.PageSize, q.Filters)
			if err != nil {
				return controller.PageResult[domain.UpgradeRequest]{}, err
			}
			return toControllerPage(res), nil
		},
		search: apiClient.SearchUpgradeRequests,
		actions: []actionBinding{
			{key: "a", name: "approve", label: "approve"},
			{key: "x", name: "reject", label: "reject", prompt: "Rejection reason"},
		},
		statusCycle: []string{
			"",
			domain.UpgradeStatusPending,
			domain.UpgradeStatusApproved,
			domain.UpgradeStatusRejected,
		},
	}), nil
}

// newCashoutQueue builds the cashout review tab.
func newCashoutQueue(apiClient *client.Client) (tea.Model, error) {
	ctrl, err := controller.New(controller.Config[domain.CashoutRequest]{
		Actions: []controller.Action[domain.CashoutRequest]{
			{
				Name:          "confirm",
				AllowedStatus: []string{domain.CashoutStatusPending},
				ArgName:       "code",
				Do: func(ctx context.Context, id, arg string) error {
					return apiClient.ConfirmCashoutPayment(ctx, id, arg)
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return newQueueModel(queueConfig[domain.CashoutRequest]{
		title:     "Cashout Requests",
		ctrl:      ctrl,
		renderer:  cashoutRenderer(),
		colWidths: []int{6, 14, 16, 16, 11, 12},
		fetch: func(ctx context.Context, q controller.Query) (controller.PageResult[domain.CashoutRequest], error) {
			res, err := apiClient.ListCashoutRequests(ctx, q.Page, q.PageSize, q.Filters)
			if err != nil {
				return controller.PageResult[domain.CashoutRequest]{}, err
			}
			return toControllerPage(res), nil
		},
		search:   apiClient.SearchCashoutRequests,
		document: apiClient.CashoutDocumentURL,
		actions: []actionBinding{
			{key: "c", name: "confirm", label: "confirm payment", prompt: "Confirmation code"},
		},
		statusCycle: []string{
			"",
			domain.CashoutStatusPending,
			domain.CashoutStatusCompleted,
			domain.CashoutStatusExpired,
		},
	}), nil
}

// toControllerPage adapts the API's page shape to the controller's.
func toControllerPage[T controller.Record](res *domain.PageResult[T]) controller.PageResult[T] {
	return controller.PageResult[T]{
		Records:    res.Items,
		Total:      res.Total,
		TotalPages: res.TotalPages,
		Page:       res.Page,
	}
}
