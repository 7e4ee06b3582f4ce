package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DrinkType — дискриминатор варианта напитка на проводе.
type DrinkType string

const (
	DrinkTypeCoffee DrinkType = "coffee"
	DrinkTypeTea    DrinkType = "tea"
	DrinkTypeJuice  DrinkType = "juice"
)

// DefaultRoastLevel подставляется кофе, если обжарка не указана.
const DefaultRoastLevel = "medium"

// DrinkVariant — закрытое множество вариантов напитка. Неэкспортируемый
// метод не даёт внешним пакетам добавлять свои варианты.
type DrinkVariant interface {
	drinkType() DrinkType
}

// CoffeeVariant — кофейный вариант.
type CoffeeVariant struct {
	RoastLevel string
	HasMilk    bool
	Extras     []string
}

func (CoffeeVariant) drinkType() DrinkType { return DrinkTypeCoffee }

// TeaVariant — чайный вариант.
type TeaVariant struct {
	TeaType  string
	HasHoney bool
	HasLemon bool
}

func (TeaVariant) drinkType() DrinkType { return DrinkTypeTea }

// JuiceVariant — сок. HasIce по умолчанию true: отсутствие поля на проводе
// и явное false — разные значения.
type JuiceVariant struct {
	Fruits  []string
	HasIce  bool
	HasMint bool
}

func (JuiceVariant) drinkType() DrinkType { return DrinkTypeJuice }

// Drink — позиция каталога напитков.
type Drink struct {
	ID          string
	Name        string
	Price       float64
	Description string
	ImageURL    string
	Variant     DrinkVariant
}

// DrinkKey идентифицирует напиток в агрегатах: одинаковые id разных
// вариантов не сливаются.
type DrinkKey struct {
	Type DrinkType
	ID   string
}

// Type возвращает дискриминатор варианта.
func (d Drink) Type() DrinkType {
	if d.Variant == nil {
		return ""
	}
	return d.Variant.drinkType()
}

// Category — отображаемое имя категории для группировки в меню.
func (d Drink) Category() string {
	switch d.Type() {
	case DrinkTypeCoffee:
		return "Coffee"
	case DrinkTypeTea:
		return "Tea"
	case DrinkTypeJuice:
		return "Juice"
	default:
		return "Unknown"
	}
}

// Key возвращает агрегатный ключ напитка.
func (d Drink) Key() DrinkKey {
	return DrinkKey{Type: d.Type(), ID: d.ID}
}

// PreparationDescription собирает человекочитаемую инструкцию приготовления
// из полей варианта.
func (d Drink) PreparationDescription() string {
	switch v := d.Variant.(type) {
	case CoffeeVariant:
		roast := v.RoastLevel
		if roast == "" {
			roast = DefaultRoastLevel
		}
		steps := []string{fmt.Sprintf("grind %s roast beans and pull a shot", roast)}
		if v.HasMilk {
			steps = append(steps, "steam milk and pour it on top")
		}
		if len(v.Extras) > 0 {
			steps = append(steps, "finish with "+strings.Join(v.Extras, ", "))
		}
		return strings.Join(steps, ", ")
	case TeaVariant:
		steps := []string{fmt.Sprintf("steep %s tea leaves", v.TeaType)}
		if v.HasHoney {
			steps = append(steps, "stir in honey")
		}
		if v.HasLemon {
			steps = append(steps, "add a slice of lemon")
		}
		return strings.Join(steps, ", ")
	case JuiceVariant:
		steps := []string{"press " + strings.Join(v.Fruits, ", ")}
		if v.HasIce {
			steps = append(steps, "serve over ice")
		}
		if v.HasMint {
			steps = append(steps, "garnish with mint")
		}
		return strings.Join(steps, ", ")
	default:
		return ""
	}
}

// ValidateInvariants возвращает все нарушения инвариантов напитка разом,
// чтобы каталог мог показать их одним сообщением.
func (d Drink) ValidateInvariants() []error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, ErrDrinkIDRequired)
	}
	if d.Name == "" {
		errs = append(errs, ErrDrinkNameRequired)
	}
	if d.Price < 0 {
		errs = append(errs, ErrDrinkPriceNegative)
	}
	switch v := d.Variant.(type) {
	case CoffeeVariant:
	case TeaVariant:
		if v.TeaType == "" {
			errs = append(errs, ErrTeaTypeRequired)
		}
	case JuiceVariant:
		if len(v.Fruits) == 0 {
			errs = append(errs, ErrJuiceFruitsRequired)
		}
	default:
		errs = append(errs, ErrDrinkVariantUnknown)
	}
	return errs
}

// drinkJSON — плоское проводное представление напитка: общие поля плюс
// поля всех вариантов, различаемые дискриминатором type. Булевы поля
// вариантов — указатели, чтобы отличать явное false от отсутствия.
type drinkJSON struct {
	Type        DrinkType `json:"type"`
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Description string    `json:"description,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`

	RoastLevel string   `json:"roastLevel,omitempty"`
	HasMilk    *bool    `json:"hasMilk,omitempty"`
	Extras     []string `json:"extras,omitempty"`

	TeaType  string `json:"teaType,omitempty"`
	HasHoney *bool  `json:"hasHoney,omitempty"`
	HasLemon *bool  `json:"hasLemon,omitempty"`

	Fruits  []string `json:"fruits,omitempty"`
	HasIce  *bool    `json:"hasIce,omitempty"`
	HasMint *bool    `json:"hasMint,omitempty"`
}

// MarshalJSON сериализует напиток с дискриминатором варианта.
func (d Drink) MarshalJSON() ([]byte, error) {
	wire := drinkJSON{
		Type:        d.Type(),
		ID:          d.ID,
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		ImageURL:    d.ImageURL,
	}

	switch v := d.Variant.(type) {
	case CoffeeVariant:
		roast := v.RoastLevel
		if roast == "" {
			roast = DefaultRoastLevel
		}
		wire.RoastLevel = roast
		wire.HasMilk = boolPtr(v.HasMilk)
		wire.Extras = v.Extras
	case TeaVariant:
		wire.TeaType = v.TeaType
		wire.HasHoney = boolPtr(v.HasHoney)
		wire.HasLemon = boolPtr(v.HasLemon)
	case JuiceVariant:
		wire.Fruits = v.Fruits
		wire.HasIce = boolPtr(v.HasIce)
		wire.HasMint = boolPtr(v.HasMint)
	default:
		return nil, fmt.Errorf("marshal drink %q: %w", d.ID, ErrDrinkVariantUnknown)
	}

	return json.Marshal(wire)
}

// UnmarshalJSON восстанавливает вариант по дискриминатору type.
// Неизвестный дискриминатор — ошибка, а не тихий пропуск.
func (d *Drink) UnmarshalJSON(data []byte) error {
	var wire drinkJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	d.ID = wire.ID
	d.Name = wire.Name
	d.Price = wire.Price
	d.Description = wire.Description
	d.ImageURL = wire.ImageURL

	switch wire.Type {
	case DrinkTypeCoffee:
		roast := wire.RoastLevel
		if roast == "" {
			roast = DefaultRoastLevel
		}
		d.Variant = CoffeeVariant{
			RoastLevel: roast,
			HasMilk:    boolValue(wire.HasMilk, false),
			Extras:     wire.Extras,
		}
	case DrinkTypeTea:
		d.Variant = TeaVariant{
			TeaType:  wire.TeaType,
			HasHoney: boolValue(wire.HasHoney, false),
			HasLemon: boolValue(wire.HasLemon, false),
		}
	case DrinkTypeJuice:
		d.Variant = JuiceVariant{
			Fruits:  wire.Fruits,
			HasIce:  boolValue(wire.HasIce, true),
			HasMint: boolValue(wire.HasMint, false),
		}
	default:
		return fmt.Errorf("unknown drink type %q", wire.Type)
	}
	return nil
}

func boolPtr(v bool) *bool { return &v }

func boolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
