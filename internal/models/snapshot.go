package models

import "time"

// Snapshot — согласованное состояние дашборда: стакан и лента сделок,
// подтверждённые одной и той же успешной синхронизацией.
//
// Инвариант: обе половины снимка обновляются только вместе; наблюдатель
// никогда не видит свежий стакан рядом с устаревшей лентой (и наоборот).
type Snapshot struct {
	Book     OrderBook
	Trades   []Trade
	SyncedAt time.Time
}
