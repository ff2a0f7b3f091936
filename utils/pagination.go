package utils

const pageSizeDefault = 20
const pageSizeMax = 100

// GetPaginationParams calculates the offset and limit for pagination based on the provided values.
// If page or limit are nil, default values are used. The limit is capped at a maximum value.
// Pages are 1-based.
func GetPaginationParams(page *int, limit *int) (int, int) {
	finalLimit := pageSizeDefault
	if limit != nil && *limit > 0 {
		finalLimit = min(*limit, pageSizeMax)
	}

	finalOffset := 0
	if page != nil && *page > 1 {
		finalOffset = (*page - 1) * finalLimit
	}

	return finalOffset, finalLimit
}
