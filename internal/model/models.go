package model

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&FloorPlan{},
		&Apartment{},
		&ImageAsset{},
		&PriceHistory{},
		&ScrapeLog{},
		&SavedApartment{},
		&PushSubscription{},
	}
}
