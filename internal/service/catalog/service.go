// Package catalog обслуживает фиксированный каталог напитков.
// Состав каталога задаётся при конструировании; глобального изменяемого
// состояния нет.
package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/barista/internal/domain"
)

// RecommendedLimit ограничивает выдачу Recommended.
const RecommendedLimit = 3

//go:embed catalog.json
var defaultCatalogJSON []byte

// DefaultCatalog разбирает встроенный файл каталога.
func DefaultCatalog() ([]domain.Drink, error) {
	var drinks []domain.Drink
	if err := json.Unmarshal(defaultCatalogJSON, &drinks); err != nil {
		return nil, fmt.Errorf("decode embedded catalog: %w", err)
	}
	return drinks, nil
}

// Service отдаёт напитки каталога и поисковые выборки по нему.
type Service struct {
	drinks []domain.Drink
	logger *log.Entry
}

// NewService валидирует напитки и возвращает сервис каталога.
// Порядок напитков фиксируется на время жизни сервиса.
func NewService(drinks []domain.Drink, logger *log.Entry) (*Service, error) {
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}

	for _, drink := range drinks {
		if errs := drink.ValidateInvariants(); len(errs) > 0 {
			return nil, fmt.Errorf("drink %q: %w", drink.ID, errors.Join(errs...))
		}
	}

	owned := make([]domain.Drink, len(drinks))
	copy(owned, drinks)

	return &Service{drinks: owned, logger: logger}, nil
}

// ListAvailable возвращает снимок каталога в стабильном порядке.
func (s *Service) ListAvailable() []domain.Drink {
	out := make([]domain.Drink, len(s.drinks))
	copy(out, s.drinks)
	return out
}

// ByCategory разбивает каталог по отображаемым именам категорий.
func (s *Service) ByCategory() map[string][]domain.Drink {
	out := make(map[string][]domain.Drink)
	for _, drink := range s.drinks {
		category := drink.Category()
		out[category] = append(out[category], drink)
	}
	return out
}

// FindByID ищет напиток линейно; отсутствие — не ошибка.
func (s *Service) FindByID(id string) (domain.Drink, bool) {
	for _, drink := range s.drinks {
		if drink.ID == id {
			return drink, true
		}
	}
	return domain.Drink{}, false
}

// Search ищет подстроку в имени или описании без учёта регистра.
// Пустой запрос даёт пустую выборку, а не весь каталог.
func (s *Service) Search(query string) []domain.Drink {
	result := make([]domain.Drink, 0)
	if query == "" {
		return result
	}

	needle := strings.ToLower(query)
	for _, drink := range s.drinks {
		if strings.Contains(strings.ToLower(drink.Name), needle) ||
			strings.Contains(strings.ToLower(drink.Description), needle) {
			result = append(result, drink)
		}
	}
	return result
}

// PriceOf возвращает цену напитка или ErrDrinkNotFound.
func (s *Service) PriceOf(id string) (float64, error) {
	drink, ok := s.FindByID(id)
	if !ok {
		return 0, fmt.Errorf("%w: %s", domain.ErrDrinkNotFound, id)
	}
	return drink.Price, nil
}

// Recommended подбирает до трёх напитков того же варианта, исключая исходный,
// в порядке каталога.
func (s *Service) Recommended(drink domain.Drink) []domain.Drink {
	result := make([]domain.Drink, 0, RecommendedLimit)
	for _, candidate := range s.drinks {
		if candidate.Type() != drink.Type() || candidate.ID == drink.ID {
			continue
		}
		result = append(result, candidate)
		if len(result) == RecommendedLimit {
			break
		}
	}
	return result
}

// ByVariant фильтрует каталог по дискриминатору варианта.
func (s *Service) ByVariant(variant domain.DrinkType) []domain.Drink {
	result := make([]domain.Drink, 0)
	for _, drink := range s.drinks {
		if drink.Type() == variant {
			result = append(result, drink)
		}
	}
	return result
}

// Каталог фиксирован на время жизни процесса: операций изменения нет.

// AddDrink не поддерживается.
func (s *Service) AddDrink(domain.Drink) error { return domain.ErrNotImplemented }

// UpdateDrink не поддерживается.
func (s *Service) UpdateDrink(domain.Drink) error { return domain.ErrNotImplemented }

// RemoveDrink не поддерживается.
func (s *Service) RemoveDrink(string) error { return domain.ErrNotImplemented }
