package service

import (
	"math"
	"strconv"
	"strings"
)

// ValidationError ввод пользователя отвергнут до похода в сеть
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

const (
	msgInvalidQuantity  = "Please enter a valid quantity"
	msgExceedsStock     = "Requested quantity exceeds available stock"
	msgNoDraft          = "No order in progress"
	msgInvalidProduct   = "Invalid product selected"
	msgMissingName      = "Please enter a product name"
	msgInvalidPrice     = "Please enter a valid price"
	msgInvalidStock     = "Please enter a valid stock quantity"
	msgMissingEmailPass = "Please enter email and password"
	msgUnknownTab       = "Unknown tab"
)

// Фиксируем что строка это набор символов от "0" до "9"
func isDigits(number string) bool {
	if number == "" {
		return false
	}

	for i := 0; i < len(number); i++ {
		if number[i] < '0' || number[i] > '9' {
			return false
		}
	}
	return true
}

// parseCount неотрицательное целое без знака и дробей, "3abc" не проходит
func parseCount(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if !isDigits(raw) {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseOrderQuantity положительное целое не больше остатка на момент открытия черновика
func parseOrderQuantity(raw string, maxQty int) (int, error) {
	qty, ok := parseCount(raw)
	if !ok || qty <= 0 {
		return 0, &ValidationError{Message: msgInvalidQuantity}
	}
	if qty > maxQty {
		return 0, &ValidationError{Message: msgExceedsStock}
	}
	return qty, nil
}

func parsePrice(raw string) (float64, bool) {
	price, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, false
	}
	return price, true
}
