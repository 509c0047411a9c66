package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessage_Validate(t *testing.T) {
	valid := &Message{ID: "msg1", ChannelID: "c1", MemberID: "m1", Content: "hi", Type: MessageTypeText}
	assert.NoError(t, valid.Validate())

	emptyText := &Message{ID: "msg1", ChannelID: "c1", MemberID: "m1", Type: MessageTypeText}
	assert.Error(t, emptyText.Validate())

	// System messages may have empty content.
	system := &Message{ID: "msg1", ChannelID: "c1", MemberID: "m1", Type: MessageTypeSystem}
	assert.NoError(t, system.Validate())

	badType := &Message{ID: "msg1", ChannelID: "c1", MemberID: "m1", Content: "hi", Type: "video"}
	assert.Error(t, badType.Validate())
}

func TestMember_Validate(t *testing.T) {
	valid := &Member{ID: "m1", UserID: "u1", Role: MemberRoleMember}
	assert.NoError(t, valid.Validate())

	badRole := &Member{ID: "m1", UserID: "u1", Role: "superuser"}
	assert.Error(t, badRole.Validate())

	longName := &Member{ID: "m1", UserID: "u1", Role: MemberRoleMember, DisplayName: strings.Repeat("x", 256)}
	assert.Error(t, longName.Validate())
}

func TestChannel_Validate(t *testing.T) {
	valid := &Channel{ID: "c1", Name: "general", CreatedBy: "m1"}
	assert.NoError(t, valid.Validate())

	unnamed := &Channel{ID: "c1", CreatedBy: "m1"}
	assert.Error(t, unnamed.Validate())

	longName := &Channel{ID: "c1", Name: strings.Repeat("x", 81), CreatedBy: "m1"}
	assert.Error(t, longName.Validate())
}

func TestFile_Validate(t *testing.T) {
	valid := &File{ID: "f1", ChannelID: "c1", MemberID: "m1", FileName: "design.png", FileSize: 1, StorageKey: "k"}
	assert.NoError(t, valid.Validate())

	negative := &File{ID: "f1", ChannelID: "c1", MemberID: "m1", FileName: "design.png", FileSize: -1, StorageKey: "k"}
	assert.Error(t, negative.Validate())
}
