package postgres

// catalogIDPattern mirrors domain.IsCatalogID for aggregates pushed down to SQL.
const catalogIDPattern = `^[a-fA-F0-9]{24}$`

const eventColumns = `id, actor_id, session_id, product_id, category_id, action, metadata, created_at`

const insertEventSQL = `
INSERT INTO tracking_events (
  id, actor_id, session_id, product_id, category_id, action, metadata, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`

const distinctViewedSQL = `
SELECT product_id
FROM tracking_events
WHERE actor_id = $1 AND action = 'view'
GROUP BY product_id
ORDER BY MIN(created_at), product_id
`

const actionSummarySQL = `
SELECT action, COUNT(*), MAX(created_at)
FROM tracking_events
WHERE actor_id = $1
GROUP BY action
`

const reassignSessionSQL = `
UPDATE tracking_events
SET actor_id = $2, session_id = NULL
WHERE actor_id = 'anonymous' AND session_id = $1
`

const productInteractionsSQL = `
SELECT product_id, COUNT(*), COUNT(DISTINCT actor_id)
FROM tracking_events
WHERE actor_id <> $1 AND product_id ~ $2
GROUP BY product_id
ORDER BY MIN(created_at), product_id
`

const productViewsSQL = `
SELECT product_id, COUNT(*), COUNT(DISTINCT actor_id)
FROM tracking_events
WHERE action = 'view' AND product_id ~ $1
GROUP BY product_id
ORDER BY MIN(created_at), product_id
`

const categoryWeightsSQL = `
SELECT category_id, COUNT(DISTINCT product_id)
FROM tracking_events
WHERE product_id = ANY($1) AND category_id IS NOT NULL AND category_id <> ''
GROUP BY category_id
ORDER BY MIN(created_at), category_id
`

const categoryProductCountsSQL = `
SELECT category_id, product_id, COUNT(*)
FROM tracking_events
WHERE category_id = ANY($1) AND product_id ~ $2
GROUP BY category_id, product_id
ORDER BY MIN(created_at), category_id, product_id
`

const coViewedSQL = `
SELECT e.product_id, COUNT(*), COUNT(DISTINCT e.actor_id)
FROM tracking_events e
WHERE e.action = 'view'
  AND e.product_id <> $1
  AND e.product_id ~ $2
  AND e.actor_id IN (
    SELECT v.actor_id FROM tracking_events v
    WHERE v.product_id = $1 AND v.action = 'view'
  )
GROUP BY e.product_id
ORDER BY MIN(e.created_at), e.product_id
`
