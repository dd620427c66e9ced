package metadata

// Well-known metadata keys. Keys are partitioned by purpose so unrelated
// operations never contend on the same row.
const (
	// Sync checkpoint: last-applied manifest version and last-sync
	// timestamp. Always written together, inside one transaction.
	KeyManifestVersion = "globalManifestVersion"
	KeyLastSync        = "globalLastSync"

	// Auth tokens.
	KeyAccessToken  = "userToken"
	KeyRefreshToken = "refreshToken"

	// Raw response caches for the offline fallback, one per cacheable
	// endpoint family.
	KeyCardsCache       = "cardsCache"
	KeyGlobalCardsCache = "globalCardsCache"

	// Local asset override map (cardId -> {image?, audio?}).
	KeyLocalAssets = "local_card_assets"
)
