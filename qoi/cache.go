package qoi

import "image/color"

// colorCache is the running array of previously seen pixels. Encoder and
// decoder update it identically, so an INDEX chunk only has to carry the
// slot number.
type colorCache [qoiCacheSize]color.NRGBA

func hash(c color.NRGBA) uint8 {
	return (3*c.R + 5*c.G + 7*c.B + 11*c.A) % qoiCacheSize
}

func (cc *colorCache) lookup(idx uint8) color.NRGBA {
	return cc[idx&mask6]
}

// insert overwrites whatever was in the slot before.
func (cc *colorCache) insert(c color.NRGBA) {
	cc[hash(c)] = c
}
