package app

func Place(o Order) error {
	if o.Qty <= 0 {
		panic("boom")
	}
	return charge(o.Price * o.Qty)
}
