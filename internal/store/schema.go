package store

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    taken_at TEXT NOT NULL,
    cpu_percent REAL,
    ram_percent REAL,
    ram_available_gb REAL,
    disk_free_percent REAL,
    disk_free_gb REAL,
    health_score INTEGER NOT NULL,
    health_status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS disk_reports (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    drive TEXT NOT NULL,
    operation TEXT NOT NULL,
    success BOOLEAN NOT NULL,
    bytes_freed INTEGER NOT NULL,
    file_count INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    description TEXT,
    benefits TEXT,
    executed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS drive_locks (
    drive TEXT PRIMARY KEY,
    pid INTEGER NOT NULL,
    acquired_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_taken ON snapshots(taken_at);
CREATE INDEX IF NOT EXISTS idx_reports_executed ON disk_reports(executed_at);
CREATE INDEX IF NOT EXISTS idx_reports_drive ON disk_reports(drive);
`
