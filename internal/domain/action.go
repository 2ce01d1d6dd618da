package domain

import "strings"

type Action string

const (
	ActionView      Action = "view"
	ActionClick     Action = "click"
	ActionAddToCart Action = "add_to_cart"
	ActionPurchase  Action = "purchase"
	ActionSearch    Action = "search"
)

var Actions = []Action{ActionView, ActionClick, ActionAddToCart, ActionPurchase, ActionSearch}

func (a Action) Valid() bool {
	switch a {
	case ActionView, ActionClick, ActionAddToCart, ActionPurchase, ActionSearch:
		return true
	default:
		return false
	}
}

func ParseAction(s string) (Action, error) {
	a := Action(strings.TrimSpace(s))
	if !a.Valid() {
		return "", ErrValidationMeta("invalid action", map[string]string{
			"action": "must be one of: view, click, add_to_cart, purchase, search",
		})
	}
	return a, nil
}
