package shopify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/EAS-COD-System/EAS-COD/internal/core/domain"
)

type graphQLRequest struct {
	Query     string `json:"query"`
	Variables any    `json:"variables,omitempty"`
}

type GraphQLError struct {
	Message    string `json:"message"`
	Path       []any  `json:"path,omitempty"`
	Extensions struct {
		Code string `json:"code,omitempty"`
	} `json:"extensions,omitempty"`
}

type graphQLResponse[T any] struct {
	Data   T              `json:"data"`
	Errors []GraphQLError `json:"errors"`
}

type userErrors []domain.UserError

// check turns a non-empty userErrors list into a vendor error.
func (ue userErrors) check(mutation string) error {
	if len(ue) == 0 {
		return nil
	}
	details, _ := json.Marshal(ue)
	return &domain.VendorError{
		StatusCode: http.StatusUnprocessableEntity,
		Message:    mutation + " returned user errors",
		UserErrors: ue,
		Details:    details,
	}
}

func postGraphQL[T any](c *Client, ctx context.Context, shop, token, query string, variables any) (*T, error) {
	resp, err := doJSON[graphQLRequest, graphQLResponse[T]](c, ctx, http.MethodPost, c.apiURL(shop, "graphql.json"), token, graphQLRequest{
		Query:     query,
		Variables: variables,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		msgs := make([]string, 0, len(resp.Errors))
		for _, e := range resp.Errors {
			msgs = append(msgs, e.Message)
		}
		details, _ := json.Marshal(resp.Errors)
		return nil, &domain.VendorError{
			StatusCode: http.StatusOK,
			Message:    strings.Join(msgs, "; "),
			Details:    details,
		}
	}

	return &resp.Data, nil
}

const draftOrderCreateMutation = `mutation draftOrderCreate($input: DraftOrderInput!) {
  draftOrderCreate(input: $input) {
    draftOrder { id }
    userErrors { field message }
  }
}`

const draftOrderCompleteMutation = `mutation draftOrderComplete($id: ID!, $paymentPending: Boolean) {
  draftOrderComplete(id: $id, paymentPending: $paymentPending) {
    draftOrder { id order { id name } }
    userErrors { field message }
  }
}`

const webhookSubscriptionCreateMutation = `mutation webhookSubscriptionCreate($topic: WebhookSubscriptionTopic!, $webhookSubscription: WebhookSubscriptionInput!) {
  webhookSubscriptionCreate(topic: $topic, webhookSubscription: $webhookSubscription) {
    webhookSubscription { id }
    userErrors { field message }
  }
}`

type moneyInput struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type draftLineItemInput struct {
	VariantID     string      `json:"variantId"`
	Quantity      int         `json:"quantity"`
	PriceOverride *moneyInput `json:"priceOverride,omitempty"`
}

type mailingAddressInput struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName,omitempty"`
	Phone       string `json:"phone"`
	Address1    string `json:"address1"`
	City        string `json:"city,omitempty"`
	Province    string `json:"province,omitempty"`
	Zip         string `json:"zip,omitempty"`
	CountryCode string `json:"countryCode"`
}

type draftOrderInput struct {
	LineItems       []draftLineItemInput `json:"lineItems"`
	ShippingAddress mailingAddressInput  `json:"shippingAddress"`
	Phone           string               `json:"phone"`
	Tags            []string             `json:"tags"`
}

type draftOrderCreateData struct {
	DraftOrderCreate struct {
		DraftOrder *struct {
			ID string `json:"id"`
		} `json:"draftOrder"`
		UserErrors userErrors `json:"userErrors"`
	} `json:"draftOrderCreate"`
}

type draftOrderCompleteData struct {
	DraftOrderComplete struct {
		DraftOrder *struct {
			ID    string `json:"id"`
			Order *struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"order"`
		} `json:"draftOrder"`
		UserErrors userErrors `json:"userErrors"`
	} `json:"draftOrderComplete"`
}

type webhookSubscriptionCreateData struct {
	WebhookSubscriptionCreate struct {
		WebhookSubscription *struct {
			ID string `json:"id"`
		} `json:"webhookSubscription"`
		UserErrors userErrors `json:"userErrors"`
	} `json:"webhookSubscriptionCreate"`
}

// CreateDraftOrder creates the draft and returns its gid.
func (c *Client) CreateDraftOrder(ctx context.Context, shop, token string, order *domain.NormalizedOrder) (string, error) {
	item := draftLineItemInput{
		VariantID: variantGID(order.VariantID),
		Quantity:  order.Quantity,
	}
	if order.HasPrice && order.Currency != "" {
		item.PriceOverride = &moneyInput{Amount: order.Price.StringFixed(2), CurrencyCode: order.Currency}
	}

	input := draftOrderInput{
		LineItems: []draftLineItemInput{item},
		ShippingAddress: mailingAddressInput{
			FirstName:   order.FirstName(),
			LastName:    order.LastName(),
			Phone:       order.PhoneE164,
			Address1:    order.Address.Address1,
			City:        order.Address.City,
			Province:    order.Address.Province,
			Zip:         order.Address.Zip,
			CountryCode: order.Country.String(),
		},
		Phone: order.PhoneE164,
		Tags:  []string{codTag},
	}

	data, err := postGraphQL[draftOrderCreateData](c, ctx, shop, token, draftOrderCreateMutation, map[string]any{"input": input})
	if err != nil {
		return "", err
	}

	result := data.DraftOrderCreate
	if err := result.UserErrors.check("draftOrderCreate"); err != nil {
		return "", err
	}
	if result.DraftOrder == nil || result.DraftOrder.ID == "" {
		return "", errors.New("draftOrderCreate returned no draft order")
	}
	return result.DraftOrder.ID, nil
}

// CompleteDraftOrder converts the draft into an order. With paymentPending the
// order stays unpaid until cash is collected.
func (c *Client) CompleteDraftOrder(ctx context.Context, shop, token, draftID string, paymentPending bool) (*domain.VendorOrderResult, error) {
	data, err := postGraphQL[draftOrderCompleteData](c, ctx, shop, token, draftOrderCompleteMutation, map[string]any{
		"id":             draftID,
		"paymentPending": paymentPending,
	})
	if err != nil {
		return nil, err
	}

	result := data.DraftOrderComplete
	if err := result.UserErrors.check("draftOrderComplete"); err != nil {
		return nil, err
	}
	if result.DraftOrder == nil || result.DraftOrder.Order == nil {
		return nil, fmt.Errorf("draftOrderComplete returned no order for %s", draftID)
	}

	return &domain.VendorOrderResult{
		OrderID:   result.DraftOrder.Order.ID,
		OrderName: result.DraftOrder.Order.Name,
	}, nil
}

// SubscribeUninstall registers the APP_UNINSTALLED webhook for the shop.
func (c *Client) SubscribeUninstall(ctx context.Context, shop, token, callbackURL string) error {
	data, err := postGraphQL[webhookSubscriptionCreateData](c, ctx, shop, token, webhookSubscriptionCreateMutation, map[string]any{
		"topic": "APP_UNINSTALLED",
		"webhookSubscription": map[string]string{
			"callbackUrl": callbackURL,
			"format":      "JSON",
		},
	})
	if err != nil {
		return err
	}
	return data.WebhookSubscriptionCreate.UserErrors.check("webhookSubscriptionCreate")
}
