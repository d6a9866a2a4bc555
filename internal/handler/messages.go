package handler

// routeMessages holds the literal texts a route answers with in legacy mode.
// An empty text means the route cannot produce that outcome.
type routeMessages struct {
	success      string
	invalid      string
	emptyName    string
	unauthorized string
	conflict     string
	notFound     string
	insufficient string
}

const (
	invalidEntry        = "Invalid Entry"
	invalidEntryUsage   = "Invalid Entry : Check Docstring on how to use command"
	unauthorizedText    = "Error: Unauthorized User Cannot add to database"
	emptyNameText       = "Invalid item name : Name cannot be an empty string"
	internalErrorText   = "Internal Server Error"
	checkoutUpdatedText = "Checkout successful!"
	totalPrefix         = "Your Total is $"
)

var (
	addItemMessages = routeMessages{
		success:      "Success",
		invalid:      invalidEntry,
		emptyName:    emptyNameText,
		unauthorized: unauthorizedText,
		conflict:     "Item is already in this system! Use the update function to change items values",
	}

	updateItemMessages = routeMessages{
		success:      "Update successful!",
		invalid:      invalidEntry,
		emptyName:    emptyNameText,
		unauthorized: unauthorizedText,
		notFound:     "Cannot Update Item that does not exist! Please check the item name! Or use the /add-item command",
	}

	listMessages = routeMessages{
		invalid: invalidEntryUsage,
	}

	purchaseMessages = routeMessages{
		success:      "Purchase Successful!",
		invalid:      invalidEntryUsage,
		notFound:     "Cannot purchase item that does not exist! Please check the item name! Or use the /add-item command",
		insufficient: "Error : Purchase exceeds quantity limit! Cannot execute order",
	}

	cartMessages = routeMessages{
		success:      "Added to Shopping Cart!",
		invalid:      invalidEntryUsage,
		notFound:     "Cannot checkout item that does not exist! Please check the item name! Or use the /add-item command",
		insufficient: "Error : Checkout exceeds quantity limit! Cannot add to order",
		conflict:     "Shopping Cart changed while updating! Please try again",
	}

	removeMessages = routeMessages{
		success:  "Removed from Shopping Cart!",
		invalid:  invalidEntryUsage,
		notFound: "Cannot remove item that is not in the Shopping Cart! Please check the item name!",
	}
)
