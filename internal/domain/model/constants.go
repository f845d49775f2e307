package model

// CategoryConstants はPOIに付与されるカテゴリタグの定数
const (
	// 宿泊
	CategoryHotel    = "hotel"
	CategoryHomestay = "homestay"

	// 工芸・ショップ
	CategoryArtisanShop = "artisan_shop"
	CategoryHandicraft  = "handicraft"
	CategoryTextile     = "textile"
	CategoryPottery     = "pottery"
	CategoryTerracotta  = "terracotta"
	CategoryMarket      = "market"

	// 観光
	CategoryHeritage = "heritage"
	CategoryMuseum   = "museum"
	CategoryGallery  = "gallery"
	CategoryPark     = "park"
	CategoryGhat     = "ghat"
	CategoryTemple   = "temple"
	CategoryMosque   = "mosque"
	CategoryChurch   = "church"

	// 飲食
	CategoryRestaurant = "restaurant"
	CategoryCafe       = "cafe"
	CategorySweets     = "sweets"
	CategoryStreetFood = "street_food"
)

// CategoryNameMap はカテゴリIDから表示名へのマッピング
var CategoryNameMap = map[string]string{
	CategoryHotel:       "Hotel",
	CategoryHomestay:    "Homestay",
	CategoryArtisanShop: "Artisan Shop",
	CategoryHandicraft:  "Handicraft",
	CategoryTextile:     "Textile",
	CategoryPottery:     "Pottery",
	CategoryTerracotta:  "Terracotta",
	CategoryMarket:      "Market",
	CategoryHeritage:    "Heritage Site",
	CategoryMuseum:      "Museum",
	CategoryGallery:     "Gallery",
	CategoryPark:        "Park",
	CategoryGhat:        "Ghat",
	CategoryTemple:      "Temple",
	CategoryMosque:      "Mosque",
	CategoryChurch:      "Church",
	CategoryRestaurant:  "Restaurant",
	CategoryCafe:        "Cafe",
	CategorySweets:      "Sweets",
	CategoryStreetFood:  "Street Food",
}

// GetCategoryDisplayName はカテゴリIDから表示名を取得する
func GetCategoryDisplayName(category string) string {
	if name, ok := CategoryNameMap[category]; ok {
		return name
	}
	return category // デフォルトはそのまま返す
}

// IsValidCategory はカテゴリIDが定義済みかどうかを判定する
func IsValidCategory(category string) bool {
	_, ok := CategoryNameMap[category]
	return ok
}

// GetStayCategories は宿泊系カテゴリ一覧を取得する
func GetStayCategories() []string {
	return []string{CategoryHotel, CategoryHomestay}
}

// GetShopCategories は工芸・ショップ系カテゴリ一覧を取得する
func GetShopCategories() []string {
	return []string{
		CategoryArtisanShop,
		CategoryHandicraft,
		CategoryTextile,
		CategoryPottery,
		CategoryTerracotta,
		CategoryMarket,
	}
}

// GetSightseeingCategories は観光系カテゴリ一覧を取得する
func GetSightseeingCategories() []string {
	return []string{
		CategoryHeritage,
		CategoryMuseum,
		CategoryGallery,
		CategoryPark,
		CategoryGhat,
		CategoryTemple,
		CategoryMosque,
		CategoryChurch,
	}
}

// GetFoodCategories は飲食系カテゴリ一覧を取得する
func GetFoodCategories() []string {
	return []string{
		CategoryRestaurant,
		CategoryCafe,
		CategorySweets,
		CategoryStreetFood,
	}
}

// GetAllCategories は全カテゴリの一覧を取得する
func GetAllCategories() []string {
	categories := make([]string, 0, len(CategoryNameMap))
	categories = append(categories, GetStayCategories()...)
	categories = append(categories, GetShopCategories()...)
	categories = append(categories, GetSightseeingCategories()...)
	categories = append(categories, GetFoodCategories()...)
	return categories
}

// RadiusSetting はユーザーが選択できる検索半径（km）
type RadiusSetting float64

// 選択可能な検索半径
const (
	Radius300m RadiusSetting = 0.3
	Radius1km  RadiusSetting = 1
	Radius2km  RadiusSetting = 2
	Radius3km  RadiusSetting = 3
	Radius5km  RadiusSetting = 5
)

// GetRadiusSettings は選択可能な検索半径の一覧を小さい順で取得する
func GetRadiusSettings() []RadiusSetting {
	return []RadiusSetting{Radius300m, Radius1km, Radius2km, Radius3km, Radius5km}
}

// IsValid は定義済みの検索半径かどうかを判定する
func (r RadiusSetting) IsValid() bool {
	for _, s := range GetRadiusSettings() {
		if r == s {
			return true
		}
	}
	return false
}

// Kilometers は半径をkm単位のfloat64で返す
func (r RadiusSetting) Kilometers() float64 {
	return float64(r)
}
