package sqlite

// Schema DDL for the four collections. The seq and position columns keep
// insertion order so GetAll returns records the way they were added.
const (
	createTags = `CREATE TABLE tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    translation TEXT NOT NULL,
    main_category TEXT NOT NULL,
    sub_category TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    seq INTEGER NOT NULL
);`

	createCategories = `CREATE TABLE categories (
    main TEXT PRIMARY KEY,
    sub TEXT NOT NULL,
    seq INTEGER NOT NULL
);`

	createSelectedTags = `CREATE TABLE selected_tags (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    translation TEXT NOT NULL,
    main_category TEXT NOT NULL,
    sub_category TEXT NOT NULL,
    image_url TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL
);`

	createTagWeights = `CREATE TABLE tag_weights (
    id TEXT PRIMARY KEY,
    value INTEGER NOT NULL CHECK (value >= 0)
);`
)

// Index DDL. idx_tags_category backs TagsByCategory for both the exact
// (main, sub) lookup and the main-only range.
const (
	idxTagsCategory     = `CREATE INDEX idx_tags_category ON tags(main_category, sub_category);`
	idxTagsName         = `CREATE INDEX idx_tags_name ON tags(name);`
	idxTagsSeq          = `CREATE INDEX idx_tags_seq ON tags(seq);`
	idxCategoriesSeq    = `CREATE INDEX idx_categories_seq ON categories(seq);`
	idxSelectedPosition = `CREATE INDEX idx_selected_tags_position ON selected_tags(position);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createTags,
	createCategories,
	createSelectedTags,
	createTagWeights,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTagsCategory,
	idxTagsName,
	idxTagsSeq,
	idxCategoriesSeq,
	idxSelectedPosition,
}
