package categories

import "github.com/checktrack/checktrack/internal/model"

// Kinds lists the category kinds in display order.
var Kinds = []model.CategoryKind{model.CategoryBank, model.CategoryCompany, model.CategoryBusinessGroup}

// DisplayName returns the label shown for a kind.
func DisplayName(kind model.CategoryKind) string {
	switch kind {
	case model.CategoryBank:
		return "Banka"
	case model.CategoryCompany:
		return "Firma"
	case model.CategoryBusinessGroup:
		return "İş Grubu"
	}
	return string(kind)
}

// Defaults returns the pick lists a new data directory starts with.
func Defaults() []model.Category {
	return []model.Category{
		{
			Kind: model.CategoryBank,
			Name: DisplayName(model.CategoryBank),
			Items: []string{
				"Halk Bankası",
				"Halk Bankası Hamiline",
				"Ziraat Bankası",
				"Ziraat Bankası Hamiline",
				"Deniz Bank",
			},
		},
		{
			Kind: model.CategoryCompany,
			Name: DisplayName(model.CategoryCompany),
			Items: []string{
				"DOĞU İNŞAAT",
				"DOĞU İNŞAAT HAMİLİNE",
				"ALTAY",
				"ALTAY HAMİLİNE",
				"ONURAY İNŞAAT",
			},
		},
		{
			Kind: model.CategoryBusinessGroup,
			Name: DisplayName(model.CategoryBusinessGroup),
			Items: []string{
				"KULU",
				"CİHANBEYLİ",
				"AKHİSAR",
				"AKSARAY",
				"ESENYURT",
				"SHİFA",
				"KONYA OKUL",
				"OKUL ONARIM",
				"HATIR ÇEKİ",
				"DİĞER",
			},
		},
	}
}
