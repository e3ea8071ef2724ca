package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS month_snapshots (
    location_id      TEXT NOT NULL,
    month            TEXT NOT NULL,
    version_id       TEXT,
    fetched_at       TEXT NOT NULL,
    PRIMARY KEY (location_id, month)
);

CREATE TABLE IF NOT EXISTS day_records (
    location_id      TEXT NOT NULL,
    month            TEXT NOT NULL,
    date             TEXT NOT NULL,
    version_id       TEXT,
    txn_goal         INTEGER,
    txn_actual       INTEGER,
    sales_goal       TEXT,
    sales_actual     TEXT,
    atv_goal         TEXT,
    margin_actual    TEXT,
    PRIMARY KEY (location_id, date)
);

CREATE INDEX IF NOT EXISTS idx_day_records_month ON day_records(location_id, month);
`
