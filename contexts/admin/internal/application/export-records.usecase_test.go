package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-arrower/schoolstore/contexts/admin/internal/application"
	"github.com/go-arrower/schoolstore/contexts/admin/internal/domain"
	"github.com/go-arrower/schoolstore/repository"
)

func TestExportRecordsQueryHandler_H(t *testing.T) {
	t.Parallel()

	t.Run("all records", func(t *testing.T) {
		t.Parallel()

		books, _ := newBooks(t)

		csv, err := books.ExportRecords.H(ctx, application.ExportRecordsQuery{})
		require.NoError(t, err)

		assert.Equal(t, "key,name,code,author,category,publishedYear,file\n"+
			"1,Sách Toán 10,Book001,Bộ Giáo dục,Toán,2022,\n"+
			"2,Sách Ngữ văn 10,Book002,Bộ Giáo dục,Ngữ văn,2022,\n"+
			"3,Sách hóa 11,Book003,Bộ Giáo dục,Hóa học,2023,\n", string(csv))
	})

	t.Run("filtered", func(t *testing.T) {
		t.Parallel()

		books, _ := newBooks(t)

		csv, err := books.ExportRecords.H(ctx, application.ExportRecordsQuery{Query: "HÓA"})
		require.NoError(t, err)

		assert.Equal(t, "key,name,code,author,category,publishedYear,file\n"+
			"3,Sách hóa 11,Book003,Bộ Giáo dục,Hóa học,2023,\n", string(csv))
	})

	t.Run("quote values", func(t *testing.T) {
		t.Parallel()

		rewards := domain.Rewards()
		repo := repository.NewSlotRepository(repository.NewMemoryStore(), rewards.Name, []domain.Reward{
			{Key: "1", Name: "Bút, xanh", Code: "R1", Description: `nói "cảm ơn"`},
		})

		export := application.NewExportRecordsQueryHandler[domain.Reward](repo)

		csv, err := export.H(ctx, application.ExportRecordsQuery{})
		require.NoError(t, err)

		assert.Equal(t, "key,name,code,points,quantity,image,description\n"+
			`1,"Bút, xanh",R1,0,0,,"nói ""cảm ơn"""`+"\n", string(csv))
	})
}
