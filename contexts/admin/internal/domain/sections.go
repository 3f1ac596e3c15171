package domain

import (
	"github.com/go-arrower/schoolstore/repository/q"
)

// Section describes one kind of record: where it is kept, its default records,
// the fields searched by the admin, and the field holding an uploaded file.
type Section[E any] struct {
	// Name is used as slot of the store and in URLs.
	Name       string
	Seed       func() []E
	Search     []q.Field[E]
	Attachment string
}

func Books() Section[Book] {
	return Section[Book]{
		Name: "books",
		Seed: func() []Book {
			return []Book{
				{Key: "1", Name: "Sách Toán 10", Code: "Book001", Author: "Bộ Giáo dục", Category: "Toán", PublishedYear: 2022},
				{Key: "2", Name: "Sách Ngữ văn 10", Code: "Book002", Author: "Bộ Giáo dục", Category: "Ngữ văn", PublishedYear: 2022},
				{Key: "3", Name: "Sách hóa 11", Code: "Book003", Author: "Bộ Giáo dục", Category: "Hóa học", PublishedYear: 2023},
			}
		},
		Search: []q.Field[Book]{
			func(b Book) string { return b.Name },
			func(b Book) string { return b.Code },
		},
		Attachment: "file",
	}
}

func Rewards() Section[Reward] {
	return Section[Reward]{
		Name: "rewards",
		Seed: func() []Reward {
			return []Reward{
				{Key: "1", Name: "Bút bi", Code: "Reward001", Points: 10, Quantity: 100, Description: "Bút bi xanh"},
				{Key: "2", Name: "Sổ tay", Code: "Reward002", Points: 25, Quantity: 50, Description: "Sổ tay A5"},
				{Key: "3", Name: "Balo", Code: "Reward003", Points: 200, Quantity: 5, Description: "Balo học sinh"},
			}
		},
		Search: []q.Field[Reward]{
			func(r Reward) string { return r.Name },
			func(r Reward) string { return r.Code },
		},
		Attachment: "image",
	}
}

func StoreItems() Section[StoreItem] {
	return Section[StoreItem]{
		Name: "store-items",
		Seed: func() []StoreItem {
			return []StoreItem{
				{Key: "1", Name: "Thước kẻ", Code: "Item001", Price: 5000, Stock: 120},
				{Key: "2", Name: "Tẩy", Code: "Item002", Price: 3000, Stock: 200},
				{Key: "3", Name: "Áo đồng phục", Code: "Item003", Price: 150000, Stock: 30},
			}
		},
		Search: []q.Field[StoreItem]{
			func(i StoreItem) string { return i.Name },
			func(i StoreItem) string { return i.Code },
		},
		Attachment: "image",
	}
}

func Students() Section[Student] {
	return Section[Student]{
		Name: "students",
		Seed: func() []Student {
			return []Student{
				{Key: "1", Name: "Nguyễn Văn An", Code: "HS001", ClassName: "10A1", Points: 120, Email: "an.nguyen@example.edu.vn"},
				{Key: "2", Name: "Trần Thị Bình", Code: "HS002", ClassName: "10A2", Points: 80, Email: "binh.tran@example.edu.vn"},
				{Key: "3", Name: "Lê Hoàng Cường", Code: "HS003", ClassName: "11B1", Points: 45, Email: "cuong.le@example.edu.vn"},
			}
		},
		Search: []q.Field[Student]{
			func(s Student) string { return s.Name },
			func(s Student) string { return s.Code },
		},
		Attachment: "avatar",
	}
}
