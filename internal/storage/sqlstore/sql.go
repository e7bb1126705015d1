package sqlstore

// Both dialects take `?` placeholders, so only the DDL differs.

var mysqlSchema = []string{`
CREATE TABLE IF NOT EXISTS restaurants (
  seq             BIGINT       NOT NULL AUTO_INCREMENT,
  id              VARCHAR(36)  NOT NULL,
  name            VARCHAR(255) NOT NULL,
  name_key        VARCHAR(255) NOT NULL,
  address         VARCHAR(512) NULL,
  city            VARCHAR(128) NOT NULL,
  state           VARCHAR(64)  NULL,
  country         VARCHAR(64)  NULL,
  neighborhood    VARCHAR(128) NULL,
  postal_code     VARCHAR(32)  NULL,
  lat             DOUBLE       NULL,
  lon             DOUBLE       NULL,
  cuisines        JSON         NULL,
  price_range     VARCHAR(4)   NULL,
  ambiance        JSON         NULL,
  personal_rating DOUBLE       NULL,
  notes           TEXT         NULL,
  date_visited    DATETIME(6)  NULL,
  would_return    BOOLEAN      NULL,
  is_wishlist     BOOLEAN      NOT NULL DEFAULT FALSE,
  places_data     JSON         NULL,
  created_at      DATETIME(6)  NOT NULL,
  updated_at      DATETIME(6)  NOT NULL,
  PRIMARY KEY (id),
  UNIQUE KEY uq_restaurants_seq (seq),
  KEY idx_restaurants_name_key (name_key),
  KEY idx_restaurants_date_visited (date_visited)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{`
CREATE TABLE IF NOT EXISTS restaurants (
  seq             INTEGER  PRIMARY KEY AUTOINCREMENT,
  id              TEXT     NOT NULL UNIQUE,
  name            TEXT     NOT NULL,
  name_key        TEXT     NOT NULL,
  address         TEXT,
  city            TEXT     NOT NULL,
  state           TEXT,
  country         TEXT,
  neighborhood    TEXT,
  postal_code     TEXT,
  lat             REAL,
  lon             REAL,
  cuisines        TEXT,
  price_range     TEXT,
  ambiance        TEXT,
  personal_rating REAL,
  notes           TEXT,
  date_visited    DATETIME,
  would_return    BOOLEAN,
  is_wishlist     BOOLEAN  NOT NULL DEFAULT 0,
  places_data     TEXT,
  created_at      DATETIME NOT NULL,
  updated_at      DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_restaurants_name_key ON restaurants (name_key)`,
	`CREATE INDEX IF NOT EXISTS idx_restaurants_date_visited ON restaurants (date_visited)`,
}

const columns = `id, name, address, city, state, country, neighborhood, postal_code, lat, lon,
  cuisines, price_range, ambiance, personal_rating, notes, date_visited, would_return,
  is_wishlist, places_data, created_at, updated_at`

const insertRestaurantSQL = `
INSERT INTO restaurants
  (id, name, name_key, address, city, state, country, neighborhood, postal_code, lat, lon,
   cuisines, price_range, ambiance, personal_rating, notes, date_visited, would_return,
   is_wishlist, places_data, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateRestaurantSQL = `
UPDATE restaurants SET
  name            = ?,
  name_key        = ?,
  address         = ?,
  city            = ?,
  state           = ?,
  country         = ?,
  neighborhood    = ?,
  postal_code     = ?,
  lat             = ?,
  lon             = ?,
  cuisines        = ?,
  price_range     = ?,
  ambiance        = ?,
  personal_rating = ?,
  notes           = ?,
  date_visited    = ?,
  would_return    = ?,
  is_wishlist     = ?,
  places_data     = ?,
  updated_at      = ?
WHERE id = ?
`

const existsSQL = `SELECT 1 FROM restaurants WHERE id = ?`

const selectAllSQL = `SELECT ` + columns + ` FROM restaurants ORDER BY seq`

const selectByNameSQL = `SELECT ` + columns + ` FROM restaurants WHERE name_key = ? ORDER BY seq LIMIT 1`

// Most recent visit first; unvisited records never appear.
const selectRecentSQL = `
SELECT ` + columns + ` FROM restaurants
WHERE date_visited IS NOT NULL
ORDER BY date_visited DESC, seq DESC
LIMIT ?`

const selectFavoritesSQL = `
SELECT ` + columns + ` FROM restaurants
WHERE personal_rating IS NOT NULL AND personal_rating >= ?
ORDER BY personal_rating DESC, seq
LIMIT ?`

const selectWishlistSQL = `
SELECT ` + columns + ` FROM restaurants
WHERE is_wishlist = ?
ORDER BY seq DESC
LIMIT ?`
