package ledger

// Schema creates the accounts and links tables. Quantities are never
// stored at zero and each (creditor, debtor, goal) triple has one row.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	goal_id TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('member', 'treasury')),
	balance INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_treasury ON accounts(goal_id) WHERE role = 'treasury';
CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_member ON accounts(user_id, goal_id) WHERE role = 'member';

CREATE TABLE IF NOT EXISTS links (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL CHECK (kind IN ('bond', 'swap')),
	creditor_id TEXT NOT NULL REFERENCES accounts(id),
	debtor_id TEXT NOT NULL REFERENCES accounts(id),
	goal_id TEXT NOT NULL,
	qty INTEGER NOT NULL CHECK (qty > 0),
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	CHECK (creditor_id <> debtor_id),
	UNIQUE (creditor_id, debtor_id, goal_id)
);

CREATE INDEX IF NOT EXISTS idx_links_debtor ON links(debtor_id);
CREATE INDEX IF NOT EXISTS idx_links_goal ON links(goal_id);
`
