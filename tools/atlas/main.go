// atlas 將gorm模型輸出成SQL，供Atlas規劃資料庫遷移使用
package main

import (
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"

	"wayx/models"
)

func main() {
	stmts, err := gormschema.New("postgres").Load(
		&models.User{},
		&models.UserIdentity{},
		&models.Listing{},
		&models.Bid{},
		&models.Deal{},
		&models.Notification{},
		&models.ChatThread{},
		&models.ChatMessage{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, stmts)
}
