package catalog

// Category names of the default price list
const (
	CategorySeatFee = "席料"
	CategoryTickets = "回数券"
	CategoryDrinks  = "ドリンク"
	CategoryOther   = "その他"
)

// Default returns the register's price list
func Default() *Catalog {
	return New(
		Category{Name: CategorySeatFee, Entry: CustomPriceLeaf(CategorySeatFee)},
		Category{Name: CategoryTickets, Entry: Group(
			Member{Key: "一般", Item: Item{Name: "一般回数券", Price: 4750}},
			Member{Key: "女性", Item: Item{Name: "女性回数券", Price: 3750}},
			Member{Key: "高校生以下", Item: Item{Name: "高校生以下回数券", Price: 3250}},
		)},
		Category{Name: CategoryDrinks, Entry: Group(
			Member{Key: "ビール", Item: Item{Name: "ビール", Price: 500}},
			Member{Key: "チューハイ", Item: Item{Name: "チューハイ", Price: 300}},
			Member{Key: "ペットボトル", Item: Item{Name: "ペットボトル", Price: 120}},
			Member{Key: "缶・コーヒー", Item: Item{Name: "缶・コーヒー", Price: 100}},
		)},
		Category{Name: CategoryOther, Entry: CustomPriceLeaf(CategoryOther)},
	)
}
