package experiences

import "gorm.io/gorm"

// Partition selects a logical subset of the cached experiences table.
type Partition int

const (
	// PartitionAll selects every cached row regardless of the recommended flag.
	PartitionAll Partition = iota
	// PartitionRecommended selects rows with a non-zero recommended flag.
	PartitionRecommended
	// PartitionRecent selects non-recommended rows.
	PartitionRecent
)

func (p Partition) String() string {
	switch p {
	case PartitionAll:
		return "all"
	case PartitionRecommended:
		return "recommended"
	case PartitionRecent:
		return "recent"
	default:
		return "unknown"
	}
}

// Contains reports whether a record with the given recommended flag belongs to p.
func (p Partition) Contains(recommended int) bool {
	switch p {
	case PartitionAll:
		return true
	case PartitionRecommended:
		return recommended != 0
	case PartitionRecent:
		return recommended == 0
	default:
		return false
	}
}

// scope narrows a query to the partition.
func (p Partition) scope(db *gorm.DB) *gorm.DB {
	switch p {
	case PartitionRecommended:
		return db.Where("recommended <> ?", 0)
	case PartitionRecent:
		return db.Where("recommended = ?", 0)
	default:
		return db
	}
}
