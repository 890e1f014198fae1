package catalog

import (
	"log/slog"
	"strings"

	"github.com/myrjola/nai/internal/errors"
)

// ItemType tags an item with the kind of object it is. The generation service selects the item context by
// the type's wire name.
type ItemType int

const (
	ItemTypeUnknown ItemType = iota
	ItemTypeDiamondPickaxe
	ItemTypeWhiskyGlass
	ItemTypeVeganFur
	ItemTypeStudyGuide
	ItemTypeLumberjackBurger
	ItemTypeTool
)

var ErrUnknownItemType = errors.NewSentinel("unknown item type")

// itemTypeNames is the display name of each type. The wire name is the lowercased display name.
var itemTypeNames = map[ItemType]string{
	ItemTypeDiamondPickaxe:   "DiamondPickaxe",
	ItemTypeWhiskyGlass:      "WhiskyGlass",
	ItemTypeVeganFur:         "VeganFur",
	ItemTypeStudyGuide:       "StudyGuide",
	ItemTypeLumberjackBurger: "LumberjackBurger",
	ItemTypeTool:             "Tool",
}

var wireNames = func() map[ItemType]string {
	m := make(map[ItemType]string, len(itemTypeNames))
	for t, name := range itemTypeNames {
		m[t] = strings.ToLower(name)
	}
	return m
}()

// ItemTypes lists every known type in declaration order.
func ItemTypes() []ItemType {
	return []ItemType{
		ItemTypeDiamondPickaxe,
		ItemTypeWhiskyGlass,
		ItemTypeVeganFur,
		ItemTypeStudyGuide,
		ItemTypeLumberjackBurger,
		ItemTypeTool,
	}
}

func (t ItemType) String() string {
	if name, ok := itemTypeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// WireName is the value sent as "itemType" in generation requests, e.g. "diamondpickaxe".
func (t ItemType) WireName() string {
	return wireNames[t]
}

// Valid reports whether t is one of the declared types.
func (t ItemType) Valid() bool {
	_, ok := itemTypeNames[t]
	return ok
}

// ParseItemType accepts both the wire name and the display name, case-insensitively.
func ParseItemType(s string) (ItemType, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for t, wire := range wireNames {
		if wire == needle {
			return t, nil
		}
	}
	return ItemTypeUnknown, errors.Wrap(ErrUnknownItemType, "parse item type", slog.String("item_type", s))
}

// MarshalText implements encoding.TextMarshaler using the wire name.
func (t ItemType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, errors.Wrap(ErrUnknownItemType, "marshal item type", slog.Int("item_type", int(t)))
	}
	return []byte(t.WireName()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so that catalog files can name types as text.
func (t *ItemType) UnmarshalText(text []byte) error {
	parsed, err := ParseItemType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
