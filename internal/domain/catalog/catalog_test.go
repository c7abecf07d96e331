package catalog

import (
	"testing"

	"github.com/register-pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Shape(t *testing.T) {
	c := Default()

	assert.Equal(t, []string{CategorySeatFee, CategoryTickets, CategoryDrinks, CategoryOther}, c.Categories())

	seat, ok := c.Entry(CategorySeatFee)
	require.True(t, ok)
	assert.Equal(t, KindLeaf, seat.Kind())
	assert.True(t, seat.CustomPrice())

	drinks, ok := c.Entry(CategoryDrinks)
	require.True(t, ok)
	assert.Equal(t, KindGroup, drinks.Kind())
	assert.False(t, drinks.CustomPrice())
	assert.Equal(t, []string{"ビール", "チューハイ", "ペットボトル", "缶・コーヒー"}, drinks.Members())
}

func TestCatalog_Lookup(t *testing.T) {
	c := Default()

	tests := []struct {
		name     string
		category string
		subItem  string
		want     Item
		found    bool
	}{
		{"group member", CategoryTickets, "女性", Item{Name: "女性回数券", Price: 3750}, true},
		{"drink", CategoryDrinks, "ビール", Item{Name: "ビール", Price: 500}, true},
		{"custom price leaf resolves to zero", CategorySeatFee, "", Item{Name: "席料", Price: 0}, true},
		{"group without member", CategoryDrinks, "", Item{}, false},
		{"unknown member", CategoryDrinks, "ワイン", Item{}, false},
		{"leaf addressed with member", CategoryOther, "x", Item{}, false},
		{"unknown category", "フード", "", Item{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Lookup(tt.category, tt.subItem)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_Resolve(t *testing.T) {
	c := Default()

	t.Run("group member is named by its key", func(t *testing.T) {
		item, err := c.Resolve(Selection{Category: CategoryTickets, SubItem: "一般"})
		require.NoError(t, err)
		assert.Equal(t, Item{Name: "一般", Price: 4750}, item)

		item, err = c.Resolve(Selection{Category: CategoryDrinks, SubItem: "缶・コーヒー"})
		require.NoError(t, err)
		assert.Equal(t, Item{Name: "缶・コーヒー", Price: 100}, item)
	})

	t.Run("custom price", func(t *testing.T) {
		item, err := c.Resolve(Selection{Category: CategorySeatFee, CustomPrice: 500})
		require.NoError(t, err)
		assert.Equal(t, Item{Name: "席料", Price: 500}, item)
	})

	rejections := []struct {
		name  string
		sel   Selection
		field string
	}{
		{"no category", Selection{}, "category"},
		{"unknown category", Selection{Category: "フード"}, "category"},
		{"missing sub-item", Selection{Category: CategoryDrinks}, "sub_item"},
		{"unknown sub-item", Selection{Category: CategoryDrinks, SubItem: "ワイン"}, "sub_item"},
		{"zero custom price", Selection{Category: CategoryOther}, "custom_price"},
		{"negative custom price", Selection{Category: CategorySeatFee, CustomPrice: -100}, "custom_price"},
	}
	for _, tt := range rejections {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Resolve(tt.sel)
			require.Error(t, err)
			var verr shared.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestFlat(t *testing.T) {
	c := Flat(Item{Name: "コーヒー", Price: 300}, Item{Name: "紅茶", Price: 250})

	assert.Equal(t, []string{"コーヒー", "紅茶"}, c.Categories())

	item, err := c.Resolve(Selection{Category: "紅茶"})
	require.NoError(t, err)
	assert.Equal(t, int64(250), item.Price)

	found, ok := c.Lookup("コーヒー", "")
	assert.True(t, ok)
	assert.Equal(t, "コーヒー", found.Name)
}

func TestGroup_DuplicateKeyKeepsFirstPosition(t *testing.T) {
	e := Group(
		Member{Key: "a", Item: Item{Name: "A", Price: 1}},
		Member{Key: "b", Item: Item{Name: "B", Price: 2}},
		Member{Key: "a", Item: Item{Name: "A2", Price: 3}},
	)
	assert.Equal(t, []string{"a", "b"}, e.Members())
	item, ok := e.Member("a")
	assert.True(t, ok)
	assert.Equal(t, int64(3), item.Price)

	_, ok = e.Item()
	assert.False(t, ok)
}
