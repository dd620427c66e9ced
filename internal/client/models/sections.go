package models

// Section identifiers of the fixed catalog categories.
const (
	SectionFamily        = "family"
	SectionActions       = "actions"
	SectionFood          = "food"
	SectionDrinks        = "drinks"
	SectionFruitsVeggies = "fruits_veggies"
	SectionToys          = "toys"
	SectionEmotions      = "emotions"
	SectionCharacter     = "character"
	SectionProfessions   = "professions"
	SectionAnimals       = "animals"
	SectionClothing      = "clothing"
	SectionDishes        = "dishes"
	SectionTechnology    = "technology"
	SectionTransport     = "transport"
	SectionPlaces        = "places"
	SectionNature        = "nature"
	SectionHoliday       = "holiday"
	SectionColorsShapes  = "colors_shapes"
	SectionSchool        = "school"
	SectionSports        = "sports"
	SectionNumbers       = "numbers"
	SectionBodyParts     = "body_parts"
)

var sections = map[string]struct{}{
	SectionFamily: {}, SectionActions: {}, SectionFood: {}, SectionDrinks: {},
	SectionFruitsVeggies: {}, SectionToys: {}, SectionEmotions: {},
	SectionCharacter: {}, SectionProfessions: {}, SectionAnimals: {},
	SectionClothing: {}, SectionDishes: {}, SectionTechnology: {},
	SectionTransport: {}, SectionPlaces: {}, SectionNature: {},
	SectionHoliday: {}, SectionColorsShapes: {}, SectionSchool: {},
	SectionSports: {}, SectionNumbers: {}, SectionBodyParts: {},
}

// ValidSection reports whether id is one of the fixed section identifiers.
func ValidSection(id string) bool {
	_, ok := sections[id]
	return ok
}
