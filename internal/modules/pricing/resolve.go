package pricing

// Resolve applies the discount chain to a catalog price: special price, then
// brand rate, then product rate, then the store's base rate. Rates of zero are
// treated as unset.
func Resolve(p *Product, o Overrides) Quote {
	q := Quote{
		ProductID:     p.ID,
		ProductName:   p.Name,
		OriginalPrice: p.SellingPrice,
		UnitPrice:     p.SellingPrice,
		DiscountType:  DiscountNone,
	}
	switch {
	case o.SpecialPrice != nil:
		q.UnitPrice = *o.SpecialPrice
		q.DiscountType = DiscountSpecial
	case o.BrandRate != nil && *o.BrandRate > 0:
		q.applyRate(DiscountBrand, *o.BrandRate)
	case o.ProductRate != nil && *o.ProductRate > 0:
		q.applyRate(DiscountProduct, *o.ProductRate)
	case o.StoreRate > 0:
		q.applyRate(DiscountStore, o.StoreRate)
	}
	return q
}

func (q *Quote) applyRate(t DiscountType, rate float64) {
	q.DiscountType = t
	q.DiscountRate = rate
	q.UnitPrice = Discounted(q.OriginalPrice, rate)
}

// Discounted returns price reduced by rate percent, rounded half up to a whole won.
func Discounted(price int64, rate float64) int64 {
	// basis points keep the common two-decimal rates exact
	bp := int64(rate*100 + 0.5)
	keep := 10000 - bp
	// split price so neither product can overflow int64
	whole, rest := price/10000, price%10000
	return whole*keep + (rest*keep+5000)/10000
}
