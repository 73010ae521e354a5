package exercise

// App describes one exercise app: a family of tasks sharing a content
// shape the generator must produce.
type App struct {
	// ID - stable app identifier.
	ID string

	// Name - display name.
	Name string

	// ContentShape - a compact description of the JSON shape task
	// content for this app must follow. Sent verbatim to the generator.
	ContentShape string
}

// Apps returns the catalog of eligible exercise apps. Immutable at
// runtime.
func Apps() []App {
	return []App{
		{ID: "blanks", Name: "Fill the Blanks", ContentShape: `{"text":string with ___ gaps,"answers":[string]}`},
		{ID: "multichoice", Name: "Multiple Choice", ContentShape: `{"question":string,"options":[string],"correct":int}`},
		{ID: "pairs", Name: "Match the Pairs", ContentShape: `{"pairs":[{"left":string,"right":string}]}`},
		{ID: "order", Name: "Put in Order", ContentShape: `{"items":[string],"solution":[int]}`},
		{ID: "freetext", Name: "Free Answer", ContentShape: `{"question":string,"answer":string}`},
		{ID: "truefalse", Name: "True or False", ContentShape: `{"statement":string,"truth":bool}`},
	}
}

// AppIDs returns the ids of all eligible apps.
func AppIDs() []string {
	apps := Apps()
	ids := make([]string, len(apps))
	for i, a := range apps {
		ids[i] = a.ID
	}
	return ids
}

// AppByID returns the app with the given id and whether it exists.
func AppByID(id string) (App, bool) {
	for _, a := range Apps() {
		if a.ID == id {
			return a, true
		}
	}
	return App{}, false
}
