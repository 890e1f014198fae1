package catalog_test

import (
	"strings"
	"testing"

	"github.com/myrjola/nai/internal/catalog"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	items := c.Items()
	require.Len(t, items, 6)
	for _, item := range items {
		require.NotEmpty(t, item.Name)
		require.True(t, item.Type.Valid(), "item %s has invalid type", item.Name)
		require.LessOrEqual(t, len(item.Questions), catalog.MaxQuestions)
		require.NotEmpty(t, item.Lore)
	}

	key, err := c.ByType(catalog.ItemTypeTool)
	require.NoError(t, err)
	require.Equal(t, "Key", key.Name)
	require.Equal(t, []string{"What opens?", "Who owns it?"}, key.Questions)
}

func TestItemTypeWireNames(t *testing.T) {
	tests := []struct {
		itemType catalog.ItemType
		wire     string
	}{
		{catalog.ItemTypeDiamondPickaxe, "diamondpickaxe"},
		{catalog.ItemTypeWhiskyGlass, "whiskyglass"},
		{catalog.ItemTypeVeganFur, "veganfur"},
		{catalog.ItemTypeStudyGuide, "studyguide"},
		{catalog.ItemTypeLumberjackBurger, "lumberjackburger"},
		{catalog.ItemTypeTool, "tool"},
	}
	require.Len(t, tests, len(catalog.ItemTypes()), "every type needs a wire name")
	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			require.Equal(t, tt.wire, tt.itemType.WireName())

			text, err := tt.itemType.MarshalText()
			require.NoError(t, err)
			require.Equal(t, tt.wire, string(text))

			parsed, err := catalog.ParseItemType(tt.itemType.String())
			require.NoError(t, err)
			require.Equal(t, tt.itemType, parsed)
		})
	}

	_, err := catalog.ItemTypeUnknown.MarshalText()
	require.ErrorIs(t, err, catalog.ErrUnknownItemType)
	_, err = catalog.ParseItemType("spoon")
	require.ErrorIs(t, err, catalog.ErrUnknownItemType)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "valid",
			yaml: `items:
  - name: Key
    type: Tool
    questions: ["What opens?"]`,
		},
		{
			name: "too many questions",
			yaml: `items:
  - name: Key
    type: tool
    questions: [a, b, c, d]`,
			wantErr: catalog.ErrTooManyQuestions,
		},
		{
			name: "unknown type",
			yaml: `items:
  - name: Spoon
    type: spoon`,
			wantErr: catalog.ErrUnknownItemType,
		},
		{
			name: "empty name",
			yaml: `items:
  - name: " "
    type: tool`,
			wantErr: catalog.ErrInvalidItem,
		},
		{
			name: "empty question",
			yaml: `items:
  - name: Key
    type: tool
    questions: ["", "Who owns it?"]`,
			wantErr: catalog.ErrInvalidItem,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := catalog.Load(strings.NewReader(tt.yaml))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, c)
				return
			}
			require.NoError(t, err)
			require.Len(t, c.Items(), 1)
		})
	}
}

func TestItemQuestion(t *testing.T) {
	item := catalog.Item{Name: "Key", Type: catalog.ItemTypeTool, Questions: []string{"What opens?"}}

	q, ok := item.Question(0)
	require.True(t, ok)
	require.Equal(t, "What opens?", q)

	_, ok = item.Question(1)
	require.False(t, ok)
	_, ok = item.Question(-1)
	require.False(t, ok)
}
