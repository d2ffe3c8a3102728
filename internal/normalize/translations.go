package normalize

// translations maps lowercased native-language titles to the canonical
// title the metadata providers index best. Exact-match only; anything not
// listed is searched as-is.
var translations = map[string]string{
	// Movies and series
	"побег из шоушенка":      "The Shawshank Redemption",
	"крестный отец":          "The Godfather",
	"криминальное чтиво":     "Pulp Fiction",
	"бойцовский клуб":        "Fight Club",
	"начало":                 "Inception",
	"матрица":                "The Matrix",
	"властелин колец":        "The Lord of the Rings",
	"зеленая миля":           "The Green Mile",
	"форрест гамп":           "Forrest Gump",
	"интерстеллар":           "Interstellar",
	"во все тяжкие":          "Breaking Bad",
	"игра престолов":         "Game of Thrones",
	"клан сопрано":           "The Sopranos",
	"прослушка":              "The Wire",
	"настоящий детектив":     "True Detective",
	"тьма":                   "Dark",
	"шерлок":                 "Sherlock",
	"друзья":                 "Friends",
	"офис":                   "The Office",
	"фарго":                  "Fargo",

	// Books
	"мастер и маргарита":       "The Master and Margarita",
	"преступление и наказание": "Crime and Punishment",
	"война и мир":              "War and Peace",
	"анна каренина":            "Anna Karenina",
	"братья карамазовы":        "The Brothers Karamazov",
	"идиот":                    "The Idiot",
	"евгений онегин":           "Eugene Onegin",
	"мертвые души":             "Dead Souls",
	"отцы и дети":              "Fathers and Sons",
	"собачье сердце":           "Heart of a Dog",
	"三体":                       "The Three-Body Problem",
}
